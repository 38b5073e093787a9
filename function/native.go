package function

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/logging"
)

// Handler is the Go implementation behind a NativeFunction. It receives the
// bound arguments: every caller supplied value plus applied defaults.
type Handler func(ctx context.Context, args *core.Arguments) (any, error)

// NativeOptions configures a NativeFunction.
type NativeOptions struct {
	Logger logging.Logger
}

// NativeFunction exposes a plain Go handler as a core.Function.
//
// It has no mutable state after construction and is safe for concurrent use
// as long as the handler is.
type NativeFunction struct {
	pluginName  string
	name        string
	description string
	inputs      []core.Parameter
	handler     Handler
	logger      logging.Logger
}

// NewNativeFunction constructs a NativeFunction.
func NewNativeFunction(
	pluginName, name, description string,
	inputs []core.Parameter,
	handler Handler,
	optFns ...func(o *NativeOptions),
) *NativeFunction {
	opts := NativeOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &NativeFunction{
		pluginName:  pluginName,
		name:        name,
		description: description,
		inputs:      inputs,
		handler:     handler,
		logger:      logging.OrNoOp(opts.Logger),
	}
}

// NewNativeFunctionFromStruct derives the declared inputs from an argument struct.
func NewNativeFunctionFromStruct(
	pluginName, name, description string,
	structType any,
	handler Handler,
	optFns ...func(o *NativeOptions),
) *NativeFunction {
	return NewNativeFunction(pluginName, name, description, ParametersFromStruct(structType), handler, optFns...)
}

func (f *NativeFunction) Name() string                               { return f.name }
func (f *NativeFunction) PluginName() string                         { return f.pluginName }
func (f *NativeFunction) Description() string                        { return f.description }
func (f *NativeFunction) Inputs() []core.Parameter                   { return f.inputs }
func (f *NativeFunction) Kind() core.Kind                            { return core.KindNative }
func (f *NativeFunction) ExecutionSettings() *core.ExecutionSettings { return nil }

// Invoke binds args and runs the handler. Handler errors are returned
// unmodified; a panic is recovered into *PanicError.
func (f *NativeFunction) Invoke(ctx context.Context, args *core.Arguments) (*core.FunctionResult, error) {
	fqn := core.FullyQualifiedName(f)

	bound, err := Bind(fqn, f.inputs, args)
	if err != nil {
		f.logger.Warn("function.invoke.validation_failed", "function", fqn, "error", err.Error())
		return nil, err
	}

	f.logger.Debug("function.invoke.start", "function", fqn)
	start := time.Now()

	var value any
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Function: fqn, Value: r, Stack: debug.Stack()}
				f.logger.Error("function.invoke.panic", "function", fqn, "recover", r)
			}
		}()
		value, err = f.handler(ctx, bound)
	}()

	logging.LogFunctionCall(f.logger, fqn, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return core.NewFunctionResult(f, value), nil
}
