package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingArgument indicates a required parameter had neither a bound value nor a default.
	ErrMissingArgument = errors.New("missing argument")
	// ErrInvalidArgument indicates a bound value does not match the declared parameter type.
	ErrInvalidArgument = errors.New("invalid argument")
)

// MissingArgumentError reports which parameter of which function was unbound.
type MissingArgumentError struct {
	Function  string
	Parameter string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("function %s: missing argument %q", e.Function, e.Parameter)
}

// Is makes errors.Is(err, ErrMissingArgument) match.
func (e *MissingArgumentError) Is(target error) bool { return target == ErrMissingArgument }
