package agent

import (
	"context"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
// Implementations can derive instructions from the agent arguments, environment, etc.
type Provider interface {
	Instruction(ctx context.Context, args *core.Arguments) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(ctx context.Context, args *core.Arguments) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(ctx context.Context, args *core.Arguments) (string, error) {
	return f(ctx, args)
}

// Instruction represents either a static instruction template or a dynamic provider.
// This mirrors a union of string | provider in a Go-idiomatic way.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static template.
// The text may reference agent arguments, e.g. "You help {{.user}}".
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(ctx context.Context, args *core.Arguments) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static template.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// IsZero reports whether no instruction was configured.
func (i Instruction) IsZero() bool { return i.provider == nil && i.text == "" }

// Resolve returns the instruction text, rendering the template or invoking
// the provider as needed.
func (i Instruction) Resolve(ctx context.Context, args *core.Arguments) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(ctx, args)
	}
	return util.RenderTemplate(i.text, args.ToMap())
}
