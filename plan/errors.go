package plan

import "errors"

var (
	// ErrNoNextStep is returned by InvokeNextStep when every step already ran.
	ErrNoNextStep = errors.New("plan has no next step")

	// ErrInvalidStepType is returned when an item is neither an executable
	// function nor a plan, or when a step would make the plan contain itself.
	ErrInvalidStepType = errors.New("invalid step type")
)
