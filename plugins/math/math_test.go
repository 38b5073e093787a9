package math

import (
	"context"
	"testing"

	"github.com/hupe1980/planmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMath(t *testing.T) {
	p := New()

	tests := []struct {
		fn     string
		input  any
		amount any
		want   string
	}{
		{"Add", "2", "3", "5"},
		{"Add", 2, 3, "5"},
		{"Subtract", "5", "1", "4"},
		{"Multiply", " 6 ", "7", "42"},
		{"Divide", "9", "2", "4"},
	}

	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			fn, err := p.Function(tt.fn)
			require.NoError(t, err)

			res, err := fn.Invoke(context.Background(), core.NewArguments(core.KV("input", tt.input), core.KV("amount", tt.amount)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.String())
		})
	}
}

func TestMath_Errors(t *testing.T) {
	p := New()

	div, err := p.Function("Divide")
	require.NoError(t, err)
	_, err = div.Invoke(context.Background(), core.NewArguments(core.KV("input", "1"), core.KV("amount", "0")))
	assert.ErrorIs(t, err, ErrDivisionByZero)

	add, err := p.Function("Add")
	require.NoError(t, err)
	_, err = add.Invoke(context.Background(), core.NewArguments(core.KV("input", "two"), core.KV("amount", "1")))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = add.Invoke(context.Background(), core.NewArguments(core.KV("input", "1")))
	assert.ErrorIs(t, err, core.ErrMissingArgument)
}
