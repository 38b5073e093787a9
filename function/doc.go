// Package function provides the concrete core.Function implementations:
// NativeFunction wraps a Go handler and PromptFunction renders a template and
// delegates to a model.Model. Both bind their declared inputs the same way:
//
//   - a bound, non-nil argument is used as-is;
//   - otherwise the parameter default applies;
//   - otherwise a required parameter fails with core.ErrMissingArgument.
//
// Bound values are then type checked against the declared JSON types.
//
// Example:
//
//	add := function.NewNativeFunction("math", "Add", "Adds amount to input",
//		[]core.Parameter{
//			{Name: "input", Type: "string", Required: true},
//			{Name: "amount", Type: "string", Required: true},
//		},
//		func(ctx context.Context, args *core.Arguments) (any, error) {
//			...
//		},
//	)
package function
