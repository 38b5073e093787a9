// Package plan implements the plan execution engine: an ordered sequence of
// steps sharing one argument store.
//
// A Plan either wraps a single core.Function or acts as a container for
// steps, each of which is itself a Plan. Because Plan implements
// core.Function, plans nest transparently: a nested plan is drained to
// completion as a single step of its parent.
//
// Execution is cursor based. InvokeNextStep runs exactly the step at
// NextStepIndex, merges its result into the plan state and advances the
// cursor; Invoke drains the remaining steps. A failed step leaves the cursor
// where it was, so calling InvokeNextStep again retries the same step.
//
// Example:
//
//	p := plan.New(func(o *plan.Options) {
//	    o.State = core.NewArguments(core.KV("input", "2"))
//	})
//	_ = p.AddSteps(addStep, subtractStep)
//
//	res, err := p.Invoke(ctx, nil)
//
// Plans and their state are not synchronized; drive a plan from one
// goroutine at a time.
package plan
