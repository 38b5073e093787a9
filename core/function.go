package core

import "context"

// Kind discriminates how a Function is executed.
type Kind int

const (
	// KindNone marks a pure container (a plan without an attached function).
	KindNone Kind = iota
	// KindNative is directly executable Go code.
	KindNative
	// KindPrompt delegates execution to a language model.
	KindPrompt
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindPrompt:
		return "prompt"
	default:
		return "none"
	}
}

// Parameter declares a named function input.
type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Type is a JSON schema type name (string, number, integer, boolean, array, object).
	// An empty Type accepts any value.
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Default  any    `json:"default,omitempty" yaml:"default,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// ExecutionSettings carries sampling and routing options for prompt functions.
// The plan engine passes them through untouched; model adapters interpret them.
type ExecutionSettings struct {
	ServiceID     string         `json:"service_id,omitempty" yaml:"service_id,omitempty"`
	ModelID       string         `json:"model_id,omitempty" yaml:"model_id,omitempty"`
	Temperature   *float64       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP          *float64       `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	MaxTokens     *int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	StopSequences []string       `json:"stop_sequences,omitempty" yaml:"stop_sequences,omitempty"`
	Extra         map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Function is an invokable unit of work: native code, a prompt, or a plan.
// Implementations are immutable after construction apart from plans, whose
// execution state advances as steps run.
type Function interface {
	Name() string
	PluginName() string
	Description() string
	// Inputs declares the parameters bound from the invocation arguments.
	Inputs() []Parameter
	Kind() Kind
	// ExecutionSettings is non-nil only for KindPrompt functions.
	ExecutionSettings() *ExecutionSettings
	Invoke(ctx context.Context, args *Arguments) (*FunctionResult, error)
}

// FullyQualifiedName returns "plugin.name" for fn (or just the name when the
// plugin name is empty).
func FullyQualifiedName(fn Function) string {
	if fn.PluginName() == "" {
		return fn.Name()
	}
	return fn.PluginName() + "." + fn.Name()
}
