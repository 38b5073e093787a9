// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing functions and plans with predictable
// behavior (recorded calls, scripted failures). They are not intended for
// production usage.
package testutil
