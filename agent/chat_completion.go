package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/logging"
	"github.com/hupe1980/planmesh/model"
)

// ChatCompletionOptions configures a ChatCompletionAgent.
type ChatCompletionOptions struct {
	ID           string
	Name         string
	Description  string
	Instructions Instruction
	// Arguments are available to instruction templates and providers.
	Arguments *core.Arguments
	// Settings are forwarded to the model on every call.
	Settings *core.ExecutionSettings
	Logger   logging.Logger
}

// ChatCompletionAgent answers a chat history with a single model completion.
type ChatCompletionAgent struct {
	*Agent
	llm       model.Model
	arguments *core.Arguments
	settings  *core.ExecutionSettings
	logger    logging.Logger
}

// NewChatCompletionAgent creates an agent backed by m. It communicates
// through a ChatHistoryChannel.
func NewChatCompletionAgent(m model.Model, optFns ...func(o *ChatCompletionOptions)) *ChatCompletionAgent {
	opts := ChatCompletionOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &ChatCompletionAgent{
		Agent: New(func(o *Options) {
			o.ID = opts.ID
			o.Name = opts.Name
			o.Description = opts.Description
			o.Instructions = opts.Instructions
			o.ChannelKey = ChatHistoryChannelKey
			o.NewChannel = func() Channel { return NewChatHistoryChannel() }
		}),
		llm:       m,
		arguments: opts.Arguments,
		settings:  opts.Settings,
		logger:    logging.OrNoOp(opts.Logger),
	}
}

// InvokeHistory implements ChatHistoryHandler. The resolved instructions are
// sent as system prompt followed by history.
func (a *ChatCompletionAgent) InvokeHistory(ctx context.Context, history []core.Content) ([]core.Content, error) {
	instructions, err := a.instructions.Resolve(ctx, a.arguments)
	if err != nil {
		return nil, fmt.Errorf("agent %s: resolve instructions: %w", a.name, err)
	}

	req := model.Request{
		Instructions: instructions,
		Contents:     history,
		Settings:     a.settings,
	}

	info := a.llm.Info()
	start := time.Now()

	text, usage, err := model.GenerateText(ctx, a.llm, req)

	tokens := 0
	if usage != nil {
		tokens = usage.PromptTokens + usage.CompletionTokens
	}
	logging.LogLLMCall(a.logger, info.Name, tokens, time.Since(start), err, "agent", a.name)

	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.name, err)
	}

	return []core.Content{core.NewTextContent(core.RoleAssistant, text)}, nil
}
