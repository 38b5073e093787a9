// Package logging provides a minimal logging interface and adapters for planmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that plans, functions and model adapters use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - PlanMeshLogger with component / plan context and domain helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json")
//	p := plan.New(func(o *plan.Options) { o.Logger = logger.WithComponent("plan") })
//
// Event names are dot separated (plan.step.start, function.invoke.error) and
// attributes follow slog's alternating key/value convention.
package logging
