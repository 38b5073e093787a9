package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/planmesh"
	"github.com/hupe1980/planmesh/config"
	"github.com/hupe1980/planmesh/logging"
	"github.com/hupe1980/planmesh/metrics"
	"github.com/hupe1980/planmesh/model"
	"github.com/hupe1980/planmesh/model/anthropic"
	"github.com/hupe1980/planmesh/model/langchain"
	"github.com/hupe1980/planmesh/model/openai"
	"github.com/hupe1980/planmesh/plan"
	"github.com/hupe1980/planmesh/plugin"
	mathplugin "github.com/hupe1980/planmesh/plugins/math"
	textplugin "github.com/hupe1980/planmesh/plugins/text"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// runtime bundles what a command needs to build and run plans.
type runtime struct {
	cfg       *config.Config
	logger    *logging.PlanMeshLogger
	callbacks *plan.CallbackManager
	mesh      *planmesh.PlanMesh
	server    *http.Server
}

// builtinPlugins are the plugins available to plan definitions run by the CLI.
func builtinPlugins() []*plugin.Plugin {
	return []*plugin.Plugin{mathplugin.New(), textplugin.New()}
}

func newRuntime(cfg *config.Config, plugins ...*plugin.Plugin) (*runtime, error) {
	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format).WithComponent("cli")

	m, err := newModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:       cfg,
		logger:    logger,
		callbacks: plan.NewCallbackManager(),
	}

	rt.mesh, err = planmesh.New(func(o *planmesh.Options) {
		o.Plugins = plugins
		o.Model = m
		o.Logger = logger
		o.Callbacks = rt.callbacks
	})
	if err != nil {
		return nil, err
	}

	// must stay the last fallible step
	if cfg.Metrics.Addr != "" {
		if err := rt.serveMetrics(cfg.Metrics.Addr); err != nil {
			return nil, err
		}
	}

	return rt, nil
}

func newModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "mock":
		return model.NewMockModel(cfg.Name), nil
	case "openai":
		var reqOpts []option.RequestOption
		if cfg.APIKey != "" {
			reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
		}
		client := openaisdk.NewClient(reqOpts...)
		return openai.NewModelFromClient(&client, func(o *openai.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			if cfg.Temperature != nil {
				o.Temperature = *cfg.Temperature
			}
			if cfg.MaxTokens != nil {
				o.MaxCompletionTokens = int64(*cfg.MaxTokens)
			}
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Name != "" {
				o.Model = anthropicsdk.Model(cfg.Name)
			}
			if cfg.Temperature != nil {
				o.Temperature = *cfg.Temperature
			}
			if cfg.MaxTokens != nil {
				o.MaxTokens = int64(*cfg.MaxTokens)
			}
		}), nil
	case "langchain":
		lcOpts := []lcopenai.Option{}
		if cfg.APIKey != "" {
			lcOpts = append(lcOpts, lcopenai.WithToken(cfg.APIKey))
		}
		if cfg.Name != "" {
			lcOpts = append(lcOpts, lcopenai.WithModel(cfg.Name))
		}
		if cfg.BaseURL != "" {
			lcOpts = append(lcOpts, lcopenai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := lcopenai.New(lcOpts...)
		if err != nil {
			return nil, fmt.Errorf("langchain model: %w", err)
		}
		return langchain.NewModel(llm, func(o *langchain.Options) {
			if cfg.Name != "" {
				o.Name = cfg.Name
			}
			if cfg.Temperature != nil {
				o.CallOptions = append(o.CallOptions, llms.WithTemperature(*cfg.Temperature))
			}
			if cfg.MaxTokens != nil {
				o.CallOptions = append(o.CallOptions, llms.WithMaxTokens(*cfg.MaxTokens))
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func (rt *runtime) serveMetrics(addr string) error {
	reg := prometheus.NewRegistry()

	collector, err := metrics.NewCollector(func(o *metrics.Options) { o.Registerer = reg })
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	collector.Attach(rt.callbacks)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	rt.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := rt.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error("metrics.server.error", "addr", addr, "error", err.Error())
		}
	}()

	rt.logger.Info("metrics.server.start", "addr", addr)

	return nil
}

func (rt *runtime) Close(ctx context.Context) error {
	if rt.server == nil {
		return nil
	}
	return rt.server.Shutdown(ctx)
}
