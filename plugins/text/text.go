// Package text is a native plugin with basic string transformations.
package text

import (
	"context"
	"strconv"
	"strings"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/function"
	"github.com/hupe1980/planmesh/plugin"
)

// PluginName is the name the plugin registers under.
const PluginName = "text"

var input = core.Parameter{Name: core.InputKey, Description: "The text to transform", Type: "string", Required: true}

// New returns the text plugin.
func New(optFns ...func(o *function.NativeOptions)) *plugin.Plugin {
	return plugin.New(PluginName, "String transformations",
		unary("trim", "Trims surrounding whitespace", strings.TrimSpace, optFns),
		unary("uppercase", "Converts to upper case", strings.ToUpper, optFns),
		unary("lowercase", "Converts to lower case", strings.ToLower, optFns),
		unary("length", "Returns the length in characters", func(s string) string {
			return strconv.Itoa(len([]rune(s)))
		}, optFns),
		function.NewNativeFunction(PluginName, "concat", "Appends input2 to input",
			[]core.Parameter{input, {Name: "input2", Description: "The text to append", Type: "string", Default: ""}},
			func(_ context.Context, args *core.Arguments) (any, error) {
				return args.GetString(core.InputKey, "") + args.GetString("input2", ""), nil
			}, optFns...),
	)
}

func unary(name, description string, fn func(string) string, optFns []func(o *function.NativeOptions)) core.Function {
	return function.NewNativeFunction(PluginName, name, description, []core.Parameter{input},
		func(_ context.Context, args *core.Arguments) (any, error) {
			return fn(args.GetString(core.InputKey, "")), nil
		}, optFns...)
}
