package function

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/internal/util"
	"github.com/hupe1980/planmesh/logging"
	"github.com/hupe1980/planmesh/model"
)

// PromptOptions configures a PromptFunction.
type PromptOptions struct {
	// Inputs overrides the default single optional "input" parameter.
	Inputs []core.Parameter
	// Settings are forwarded to the model untouched.
	Settings *core.ExecutionSettings
	// Instructions become the system prompt of every request.
	Instructions string
	Logger       logging.Logger
}

// PromptFunction renders a text/template prompt with the bound arguments and
// returns the model completion as its result.
type PromptFunction struct {
	pluginName   string
	name         string
	description  string
	template     string
	model        model.Model
	inputs       []core.Parameter
	settings     *core.ExecutionSettings
	instructions string
	logger       logging.Logger
}

// NewPromptFunction constructs a PromptFunction. The template uses Go
// text/template syntax with arguments addressed by key, e.g. {{.input}}.
func NewPromptFunction(
	pluginName, name, description, template string,
	m model.Model,
	optFns ...func(o *PromptOptions),
) *PromptFunction {
	opts := PromptOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	inputs := opts.Inputs
	if len(inputs) == 0 {
		inputs = []core.Parameter{{Name: core.InputKey, Description: "Prompt input"}}
	}

	settings := opts.Settings
	if settings == nil {
		settings = &core.ExecutionSettings{}
	}

	return &PromptFunction{
		pluginName:   pluginName,
		name:         name,
		description:  description,
		template:     template,
		model:        m,
		inputs:       inputs,
		settings:     settings,
		instructions: opts.Instructions,
		logger:       logging.OrNoOp(opts.Logger),
	}
}

func (f *PromptFunction) Name() string                               { return f.name }
func (f *PromptFunction) PluginName() string                         { return f.pluginName }
func (f *PromptFunction) Description() string                        { return f.description }
func (f *PromptFunction) Inputs() []core.Parameter                   { return f.inputs }
func (f *PromptFunction) Kind() core.Kind                            { return core.KindPrompt }
func (f *PromptFunction) ExecutionSettings() *core.ExecutionSettings { return f.settings }

// Template returns the raw prompt template.
func (f *PromptFunction) Template() string { return f.template }

// Render binds args and renders the prompt without calling the model.
func (f *PromptFunction) Render(args *core.Arguments) (string, error) {
	bound, err := Bind(core.FullyQualifiedName(f), f.inputs, args)
	if err != nil {
		return "", err
	}
	return util.RenderTemplate(f.template, bound.ToMap())
}

// Invoke renders the prompt and asks the model for a completion. Model
// errors are returned unmodified.
func (f *PromptFunction) Invoke(ctx context.Context, args *core.Arguments) (*core.FunctionResult, error) {
	fqn := core.FullyQualifiedName(f)

	if f.model == nil {
		return nil, fmt.Errorf("function %s: %w", fqn, ErrModelNotConfigured)
	}

	prompt, err := f.Render(args)
	if err != nil {
		f.logger.Warn("function.invoke.validation_failed", "function", fqn, "error", err.Error())
		return nil, err
	}

	req := model.Request{
		Instructions: f.instructions,
		Contents:     []core.Content{core.NewTextContent(core.RoleUser, prompt)},
		Settings:     f.settings,
	}

	info := f.model.Info()
	f.logger.Debug("model.call.start", "function", fqn, "model", info.Name, "provider", info.Provider)
	start := time.Now()

	text, usage, err := model.GenerateText(ctx, f.model, req)

	tokens := 0
	if usage != nil {
		tokens = usage.PromptTokens + usage.CompletionTokens
	}
	logging.LogLLMCall(f.logger, info.Name, tokens, time.Since(start), err, "function", fqn)

	if err != nil {
		return nil, err
	}

	result := core.NewFunctionResult(f, text).WithMetadata("model", info.Name)
	if usage != nil {
		result.WithMetadata("usage", *usage)
	}
	return result, nil
}
