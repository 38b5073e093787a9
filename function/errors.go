package function

import (
	"errors"
	"fmt"
)

// ErrModelNotConfigured is returned when a prompt function has no model to call.
var ErrModelNotConfigured = errors.New("model not configured")

// PanicError is returned when a native handler panics. The recovered value and
// the goroutine stack are kept for diagnostics.
type PanicError struct {
	Function string
	Value    any
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("function %s panicked: %v", e.Function, e.Value)
}
