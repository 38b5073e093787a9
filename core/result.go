package core

// FunctionResult is the outcome of a function or plan invocation.
type FunctionResult struct {
	Function   string         `json:"function"`
	PluginName string         `json:"plugin_name,omitempty"`
	Value      any            `json:"value"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewFunctionResult builds a result attributed to fn.
func NewFunctionResult(fn Function, value any) *FunctionResult {
	return &FunctionResult{Function: fn.Name(), PluginName: fn.PluginName(), Value: value}
}

// String renders the result value as text (see Stringify).
func (r *FunctionResult) String() string {
	if r == nil {
		return ""
	}
	return Stringify(r.Value)
}

// WithMetadata sets a metadata entry and returns r for chaining.
func (r *FunctionResult) WithMetadata(key string, value any) *FunctionResult {
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	r.Metadata[key] = value
	return r
}
