package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/planmesh/core"
)

// CallbackType identifies the point in a step's lifecycle at which a callback runs.
type CallbackType string

const (
	// CallbackBeforeStep runs after the step arguments are resolved and before
	// the step is invoked. An error aborts the step; the cursor does not move.
	CallbackBeforeStep CallbackType = "before_step"

	// CallbackAfterStep runs after the result was merged and the cursor advanced.
	CallbackAfterStep CallbackType = "after_step"

	// CallbackOnError runs when the step invocation failed.
	CallbackOnError CallbackType = "on_error"
)

// CallbackContext describes the step a callback is executed for.
//
// Arguments is the resolved argument store handed to the step and State the
// owning plan's state. Result is set for CallbackAfterStep, Err for
// CallbackOnError and Duration for both.
type CallbackContext struct {
	PlanName   string
	StepIndex  int
	StepName   string
	PluginName string
	Arguments  *core.Arguments
	State      *core.Arguments
	Result     *core.FunctionResult
	Err        error
	Duration   time.Duration

	// CallbackType indicates which lifecycle point triggered this execution,
	// so a single implementation can serve several types.
	CallbackType CallbackType

	// Metadata is free-form storage shared by the callbacks of one step.
	Metadata map[string]any
}

// Callback is a step lifecycle hook. Callbacks run synchronously on the
// goroutine driving the plan; returning an error from a before-step callback
// prevents the step from running.
type Callback interface {
	Type() CallbackType
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback adapts a plain function to the Callback interface.
//
// Example:
//
//	cb := plan.NewFunctionCallback(plan.CallbackBeforeStep,
//	    func(ctx context.Context, c *plan.CallbackContext) error {
//	        log.Printf("running %s", c.StepName)
//	        return nil
//	    },
//	)
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a new function-based callback.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the callback type this function handles.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function with the provided context.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager holds callbacks per type and runs them in registration order.
// The first error stops the chain.
//
// Registration is not synchronized; register everything before plans run.
// A nil *CallbackManager is valid and runs nothing.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty callback manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks runs every callback registered for callbackType.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	if cm == nil {
		return nil
	}

	callbacks, exists := cm.callbacks[callbackType]
	if !exists {
		return nil
	}

	callbackCtx.CallbackType = callbackType
	for _, callback := range callbacks {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			return err
		}
	}

	return nil
}

// LoggingCallback formats step lifecycle events and hands them to a sink,
// e.g. the CLI's trace output.
type LoggingCallback struct {
	callbackType CallbackType
	logger       func(message string)
}

// NewLoggingCallback creates a new logging callback.
func NewLoggingCallback(callbackType CallbackType, logger func(message string)) *LoggingCallback {
	return &LoggingCallback{
		callbackType: callbackType,
		logger:       logger,
	}
}

// Type returns the callback type this logger handles.
func (c *LoggingCallback) Type() CallbackType {
	return c.callbackType
}

// Execute logs the step event. A nil sink is a no-op.
func (c *LoggingCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	if c.logger == nil {
		return nil
	}

	message := fmt.Sprintf("[%s] Plan: %s, Step %d: %s.%s",
		c.callbackType, callbackCtx.PlanName, callbackCtx.StepIndex, callbackCtx.PluginName, callbackCtx.StepName)

	switch {
	case callbackCtx.Err != nil:
		message += fmt.Sprintf(", Error: %v", callbackCtx.Err)
	case callbackCtx.Result != nil:
		message += fmt.Sprintf(", Result: %s", callbackCtx.Result.String())
	}

	c.logger(message)
	return nil
}

// StateValidationCallback validates the plan state after every successful step.
// The step has already been merged and counted; a validation error is returned
// to the caller of InvokeNextStep and stops an in-progress Invoke.
//
// Example:
//
//	cb := plan.NewStateValidationCallback(func(state *core.Arguments) error {
//	    if state.GetString("input", "") == "" {
//	        return errors.New("step produced no output")
//	    }
//	    return nil
//	})
type StateValidationCallback struct {
	validator func(state *core.Arguments) error
}

// NewStateValidationCallback creates a new state validation callback.
func NewStateValidationCallback(validator func(state *core.Arguments) error) *StateValidationCallback {
	return &StateValidationCallback{validator: validator}
}

// Type returns CallbackAfterStep.
func (c *StateValidationCallback) Type() CallbackType {
	return CallbackAfterStep
}

// Execute runs the validator against the plan state.
func (c *StateValidationCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	if c.validator == nil {
		return nil
	}
	return c.validator(callbackCtx.State)
}
