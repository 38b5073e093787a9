// Package metrics exposes Prometheus instrumentation for plan execution.
//
// A Collector is attached to a plan.CallbackManager and records every step
// outcome:
//
//	reg := prometheus.NewRegistry()
//	c, _ := metrics.NewCollector(func(o *metrics.Options) { o.Registerer = reg })
//	callbacks := plan.NewCallbackManager()
//	c.Attach(callbacks)
package metrics

import (
	"context"

	"github.com/hupe1980/planmesh/plan"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// AnonymousLabel replaces generated plan and plugin names in labels.
	AnonymousLabel = "anonymous"
)

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name. Defaults to "planmesh".
	Namespace string
	// Registerer receives the collectors. Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Buckets of the step duration histogram in seconds.
	Buckets []float64
}

// Collector records step counts and durations.
type Collector struct {
	steps    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewCollector creates and registers the plan step metrics.
func NewCollector(optFns ...func(o *Options)) (*Collector, error) {
	opts := Options{
		Namespace:  "planmesh",
		Registerer: prometheus.DefaultRegisterer,
		Buckets:    prometheus.DefBuckets,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Collector{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: "plan",
			Name:      "steps_total",
			Help:      "Number of executed plan steps by function and status.",
		}, []string{"plan", "function", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Subsystem: "plan",
			Name:      "step_duration_seconds",
			Help:      "Duration of plan step invocations.",
			Buckets:   opts.Buckets,
		}, []string{"plan", "function"}),
	}

	for _, col := range []prometheus.Collector{c.steps, c.duration} {
		if err := opts.Registerer.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Attach registers the after-step and on-error callbacks on cm.
func (c *Collector) Attach(cm *plan.CallbackManager) {
	cm.RegisterCallback(plan.NewFunctionCallback(plan.CallbackAfterStep, c.observe))
	cm.RegisterCallback(plan.NewFunctionCallback(plan.CallbackOnError, c.observe))
}

func (c *Collector) observe(_ context.Context, callbackCtx *plan.CallbackContext) error {
	fn := label(callbackCtx.StepName)
	if callbackCtx.PluginName != "" && !plan.IsGeneratedName(callbackCtx.PluginName) {
		fn = callbackCtx.PluginName + "." + fn
	}

	status := StatusSuccess
	if callbackCtx.Err != nil {
		status = StatusError
	}

	planName := label(callbackCtx.PlanName)
	c.steps.WithLabelValues(planName, fn, status).Inc()
	c.duration.WithLabelValues(planName, fn).Observe(callbackCtx.Duration.Seconds())

	return nil
}

func label(name string) string {
	if name == "" || plan.IsGeneratedName(name) {
		return AnonymousLabel
	}
	return name
}
