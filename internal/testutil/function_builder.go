package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/function"
)

// FunctionBuilder provides a fluent helper for constructing native functions
// in tests.
// Example:
//
//	fn := NewFunctionBuilder("math", "Add").Input("amount", true).Returns("5").Build()
//
// Chain only the parts you need; by default the function echoes its input.
type FunctionBuilder struct {
	pluginName  string
	name        string
	description string
	inputs      []core.Parameter
	handler     function.Handler
	failures    int
	err         error
}

// NewFunctionBuilder creates a builder for plugin.name.
func NewFunctionBuilder(pluginName, name string) *FunctionBuilder {
	return &FunctionBuilder{pluginName: pluginName, name: name}
}

// Description sets the function description (chainable).
func (b *FunctionBuilder) Description(d string) *FunctionBuilder { b.description = d; return b }

// Input declares an untyped input parameter (chainable).
func (b *FunctionBuilder) Input(name string, required bool) *FunctionBuilder {
	b.inputs = append(b.inputs, core.Parameter{Name: name, Required: required})
	return b
}

// Default declares an optional input parameter with a default (chainable).
func (b *FunctionBuilder) Default(name string, value any) *FunctionBuilder {
	b.inputs = append(b.inputs, core.Parameter{Name: name, Default: value})
	return b
}

// Returns makes every successful call return v (chainable).
func (b *FunctionBuilder) Returns(v any) *FunctionBuilder {
	b.handler = func(context.Context, *core.Arguments) (any, error) { return v, nil }
	return b
}

// Handler sets the implementation (chainable).
func (b *FunctionBuilder) Handler(h function.Handler) *FunctionBuilder { b.handler = h; return b }

// FailTimes makes the first n calls fail with err before the handler runs (chainable).
func (b *FunctionBuilder) FailTimes(n int, err error) *FunctionBuilder {
	b.failures = n
	b.err = err
	return b
}

// Build constructs the function.
func (b *FunctionBuilder) Build() *RecordingFunction {
	handler := b.handler
	if handler == nil {
		handler = func(_ context.Context, args *core.Arguments) (any, error) {
			return args.Value(core.InputKey, ""), nil
		}
	}

	rf := &RecordingFunction{failures: b.failures, err: b.err}
	rf.NativeFunction = function.NewNativeFunction(b.pluginName, b.name, b.description, b.inputs,
		func(ctx context.Context, args *core.Arguments) (any, error) {
			if err := rf.record(args); err != nil {
				return nil, err
			}
			return handler(ctx, args)
		})

	return rf
}

// RecordingFunction is a native function that records the bound arguments
// of every call.
type RecordingFunction struct {
	*function.NativeFunction

	mu       sync.Mutex
	calls    []*core.Arguments
	failures int
	err      error
}

func (r *RecordingFunction) record(args *core.Arguments) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, args.Clone())
	if r.failures > 0 {
		r.failures--
		return r.err
	}
	return nil
}

// Calls returns the arguments of every call so far, failed ones included.
func (r *RecordingFunction) Calls() []*core.Arguments {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*core.Arguments, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallCount returns the number of calls so far.
func (r *RecordingFunction) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// LastCall returns the arguments of the most recent call, or nil.
func (r *RecordingFunction) LastCall() *core.Arguments {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}
