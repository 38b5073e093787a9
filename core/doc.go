// Package core provides the foundational domain types shared by planmesh:
//
//   - Arguments (ordered key/value working memory threaded through plans)
//   - Function (the invokable unit: native code, prompt or plan) with its
//     Parameter declarations, Kind discriminant and ExecutionSettings
//   - FunctionResult (invocation outcome)
//   - Content / Part (role based conversation content consumed by models and agents)
//
// The package keeps implementation concerns (binding, model calls, plan
// execution) out of scope, exposing small types so the function, plan, model
// and agent packages can depend on it without cycles.
package core
