// Package langchain adapts any langchaingo llms.Model (Ollama, OpenAI,
// Anthropic, Google, Bedrock, ...) to planmesh's model.Model interface.
package langchain

import (
	"context"
	"fmt"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/model"
	"github.com/tmc/langchaingo/llms"
)

// Options configures the adapter.
type Options struct {
	// Name is reported through Info; langchaingo models do not expose one.
	Name string
	// CallOptions are applied to every call before per-request settings.
	CallOptions []llms.CallOption
}

// Model wraps a langchaingo llms.Model behind the generic model.Model interface.
type Model struct {
	llm  llms.Model
	opts Options
}

// NewModel creates an adapter around llm.
func NewModel(llm llms.Model, optFns ...func(o *Options)) *Model {
	opts := Options{Name: "langchaingo"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{llm: llm, opts: opts}
}

// Generate implements model.Model. When req.Stream is set, chunks reported
// through langchaingo's streaming callback are forwarded as partial responses.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		callOpts := m.callOptions(req.Settings)
		if req.Stream {
			callOpts = append(callOpts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case out <- model.Response{Partial: true, Content: core.NewTextContent(core.RoleAssistant, string(chunk))}:
					return nil
				}
			}))
		}

		resp, err := m.llm.GenerateContent(ctx, buildMessages(req), callOpts...)
		if err != nil {
			errCh <- fmt.Errorf("langchain generate error: %w", err)
			return
		}
		if resp == nil || len(resp.Choices) == 0 {
			errCh <- fmt.Errorf("no choices returned")
			return
		}

		choice := resp.Choices[0]
		finishReason := choice.StopReason
		if finishReason == "" {
			finishReason = "stop"
		}
		out <- model.Response{
			Content:      core.NewTextContent(core.RoleAssistant, choice.Content),
			FinishReason: finishReason,
		}
	}()

	return out, errCh
}

// callOptions maps execution settings onto langchaingo call options.
func (m *Model) callOptions(s *core.ExecutionSettings) []llms.CallOption {
	opts := append([]llms.CallOption(nil), m.opts.CallOptions...)
	if s == nil {
		return opts
	}
	if s.ModelID != "" {
		opts = append(opts, llms.WithModel(s.ModelID))
	}
	if s.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*s.Temperature))
	}
	if s.MaxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*s.MaxTokens))
	}
	if s.TopP != nil {
		opts = append(opts, llms.WithTopP(*s.TopP))
	}
	if len(s.StopSequences) > 0 {
		opts = append(opts, llms.WithStopWords(s.StopSequences))
	}
	return opts
}

func buildMessages(req model.Request) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(req.Contents)+1)
	if req.Instructions != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.Instructions))
	}
	for _, c := range req.Contents {
		switch c.Role {
		case core.RoleSystem:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, c.Text()))
		case core.RoleAssistant:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, c.Text()))
		default:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, c.Text()))
		}
	}
	return messages
}

// Info returns metadata describing the wrapped model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Name, Provider: "langchain"}
}
