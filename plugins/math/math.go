// Package math is a native plugin with integer arithmetic on string encoded
// operands, convenient for chaining through plan state.
package math

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/function"
	"github.com/hupe1980/planmesh/plugin"
)

// PluginName is the name the plugin registers under.
const PluginName = "math"

// ErrDivisionByZero is returned by Divide when amount is 0.
var ErrDivisionByZero = errors.New("division by zero")

var operands = []core.Parameter{
	{Name: core.InputKey, Description: "The value to start from", Required: true},
	{Name: "amount", Description: "The value to apply", Required: true},
}

// New returns the math plugin with Add, Subtract, Multiply and Divide.
func New(optFns ...func(o *function.NativeOptions)) *plugin.Plugin {
	return plugin.New(PluginName, "Integer arithmetic",
		binary("Add", "Adds amount to input", func(a, b int) (int, error) { return a + b, nil }, optFns),
		binary("Subtract", "Subtracts amount from input", func(a, b int) (int, error) { return a - b, nil }, optFns),
		binary("Multiply", "Multiplies input by amount", func(a, b int) (int, error) { return a * b, nil }, optFns),
		binary("Divide", "Divides input by amount", func(a, b int) (int, error) {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return a / b, nil
		}, optFns),
	)
}

func binary(name, description string, op func(a, b int) (int, error), optFns []func(o *function.NativeOptions)) core.Function {
	return function.NewNativeFunction(PluginName, name, description, operands,
		func(_ context.Context, args *core.Arguments) (any, error) {
			a, err := parseInt(args, core.InputKey)
			if err != nil {
				return nil, err
			}
			b, err := parseInt(args, "amount")
			if err != nil {
				return nil, err
			}
			r, err := op(a, b)
			if err != nil {
				return nil, err
			}
			return strconv.Itoa(r), nil
		}, optFns...)
}

func parseInt(args *core.Arguments, key string) (int, error) {
	s := strings.TrimSpace(args.GetString(key, ""))
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %q is not an integer", key, core.ErrInvalidArgument, s)
	}
	return v, nil
}
