package function

import (
	"fmt"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/internal/util"
)

// Bind resolves params against args and returns a new store holding every
// argument plus the defaults that were applied. args is never modified.
func Bind(function string, params []core.Parameter, args *core.Arguments) (*core.Arguments, error) {
	bound := args.Clone()

	for _, p := range params {
		if v, ok := bound.Get(p.Name); ok && v != nil {
			continue
		}
		if p.Default != nil {
			bound.Set(p.Name, p.Default)
			continue
		}
		if p.Required {
			return nil, &core.MissingArgumentError{Function: function, Parameter: p.Name}
		}
	}

	if err := util.ValidateParameters(bound.ToMap(), util.SchemaFromParameters(params)); err != nil {
		return nil, fmt.Errorf("function %s: %w: %w", function, core.ErrInvalidArgument, err)
	}

	return bound, nil
}

// ParametersFromStruct derives parameter declarations from the json,
// description and default tags of an argument struct.
func ParametersFromStruct(v any) []core.Parameter {
	return util.ParametersFromStruct(v)
}
