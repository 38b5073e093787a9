package function

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/internal/util"
	"github.com/hupe1980/planmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) Handle(ctx context.Context, args *core.Arguments) (any, error) {
	ret := m.Called(args.ToMap())
	return ret.Get(0), ret.Error(1)
}

func TestBind(t *testing.T) {
	params := []core.Parameter{
		{Name: "input", Type: "string", Required: true},
		{Name: "amount", Type: "string", Default: "1"},
		{Name: "note"},
	}

	t.Run("applies defaults without touching the source", func(t *testing.T) {
		args := core.NewArguments(core.KV("input", "5"), core.KV("extra", true))

		bound, err := Bind("math.Add", params, args)
		require.NoError(t, err)

		assert.Equal(t, []string{"input", "extra", "amount"}, bound.Keys())
		assert.Equal(t, "1", bound.Value("amount", nil))
		assert.False(t, args.Has("amount"))
	})

	t.Run("bound value wins over default", func(t *testing.T) {
		bound, err := Bind("math.Add", params, core.NewArguments(core.KV("input", "5"), core.KV("amount", "3")))
		require.NoError(t, err)
		assert.Equal(t, "3", bound.Value("amount", nil))
	})

	t.Run("missing required argument", func(t *testing.T) {
		_, err := Bind("math.Add", params, core.NewArguments(core.KV("amount", "3")))
		require.ErrorIs(t, err, core.ErrMissingArgument)

		var missing *core.MissingArgumentError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "math.Add", missing.Function)
		assert.Equal(t, "input", missing.Parameter)
	})

	t.Run("nil counts as unbound", func(t *testing.T) {
		_, err := Bind("math.Add", params, core.NewArguments(core.KV("input", nil)))
		assert.ErrorIs(t, err, core.ErrMissingArgument)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := Bind("math.Add", params, core.NewArguments(core.KV("input", 5)))
		require.ErrorIs(t, err, core.ErrInvalidArgument)

		var verr *util.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "input", verr.Field)
	})
}

func TestNativeFunction_Invoke(t *testing.T) {
	h := new(mockHandler)
	h.On("Handle", map[string]any{"input": "2", "amount": "3"}).Return("5", nil).Once()

	fn := NewNativeFunction("math", "Add", "Adds two numbers", []core.Parameter{
		{Name: "input", Type: "string", Required: true},
		{Name: "amount", Type: "string", Required: true},
	}, h.Handle)

	assert.Equal(t, core.KindNative, fn.Kind())
	assert.Nil(t, fn.ExecutionSettings())
	assert.Equal(t, "math.Add", core.FullyQualifiedName(fn))

	res, err := fn.Invoke(context.Background(), core.NewArguments(core.KV("input", "2"), core.KV("amount", "3")))
	require.NoError(t, err)
	assert.Equal(t, "5", res.String())
	assert.Equal(t, "Add", res.Function)
	assert.Equal(t, "math", res.PluginName)
	h.AssertExpectations(t)
}

func TestNativeFunction_ErrorsPassThrough(t *testing.T) {
	boom := errors.New("boom")
	fn := NewNativeFunction("p", "fail", "", nil, func(context.Context, *core.Arguments) (any, error) {
		return nil, boom
	})

	_, err := fn.Invoke(context.Background(), nil)
	assert.Same(t, boom, err)
}

func TestNativeFunction_RecoversPanic(t *testing.T) {
	fn := NewNativeFunction("p", "explode", "", nil, func(context.Context, *core.Arguments) (any, error) {
		panic("kaboom")
	})

	_, err := fn.Invoke(context.Background(), nil)

	var perr *PanicError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "p.explode", perr.Function)
	assert.Equal(t, "kaboom", perr.Value)
	assert.NotEmpty(t, perr.Stack)
}

func TestNativeFunction_MissingArgumentSkipsHandler(t *testing.T) {
	called := false
	fn := NewNativeFunction("p", "f", "", []core.Parameter{{Name: "x", Required: true}}, func(context.Context, *core.Arguments) (any, error) {
		called = true
		return nil, nil
	})

	_, err := fn.Invoke(context.Background(), core.NewArguments())
	assert.ErrorIs(t, err, core.ErrMissingArgument)
	assert.False(t, called)
}

func TestNewNativeFunctionFromStruct(t *testing.T) {
	type addArgs struct {
		Input  string `json:"input" description:"Left operand"`
		Amount string `json:"amount" default:"1"`
	}

	fn := NewNativeFunctionFromStruct("math", "Add", "", addArgs{}, func(ctx context.Context, args *core.Arguments) (any, error) {
		a, _ := strconv.Atoi(args.GetString("input", "0"))
		b, _ := strconv.Atoi(args.GetString("amount", "0"))
		return strconv.Itoa(a + b), nil
	})

	require.Len(t, fn.Inputs(), 2)
	assert.True(t, fn.Inputs()[0].Required)
	assert.False(t, fn.Inputs()[1].Required)

	res, err := fn.Invoke(context.Background(), core.NewArguments(core.KV("input", "41")))
	require.NoError(t, err)
	assert.Equal(t, "42", res.String())
}

func TestPromptFunction_Invoke(t *testing.T) {
	m := model.NewMockModel("mock")
	m.AddResponse("Summarize: long text", "short")
	temp := 0.2

	fn := NewPromptFunction("writer", "summarize", "Summarizes input", "Summarize: {{.input}}", m, func(o *PromptOptions) {
		o.Instructions = "be brief"
		o.Settings = &core.ExecutionSettings{ModelID: "gpt-test", Temperature: &temp}
	})

	assert.Equal(t, core.KindPrompt, fn.Kind())
	require.Len(t, fn.Inputs(), 1)
	assert.Equal(t, core.InputKey, fn.Inputs()[0].Name)

	res, err := fn.Invoke(context.Background(), core.NewArguments(core.KV("input", "long text")))
	require.NoError(t, err)
	assert.Equal(t, "short", res.String())
	assert.Equal(t, "mock", res.Metadata["model"])

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "be brief", reqs[0].Instructions)
	assert.Same(t, fn.ExecutionSettings(), reqs[0].Settings)
}

func TestPromptFunction_DefaultSettingsNotNil(t *testing.T) {
	fn := NewPromptFunction("p", "f", "", "x", model.NewMockModel("mock"))
	assert.NotNil(t, fn.ExecutionSettings())
}

func TestPromptFunction_Render(t *testing.T) {
	fn := NewPromptFunction("p", "greet", "", "Hello {{.name}}{{if .title}}, {{.title}}{{end}}!", nil, func(o *PromptOptions) {
		o.Inputs = []core.Parameter{{Name: "name", Required: true}, {Name: "title", Default: "Dr."}}
	})

	out, err := fn.Render(core.NewArguments(core.KV("name", "Ada")))
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, Dr.!", out)

	_, err = fn.Render(core.NewArguments())
	assert.ErrorIs(t, err, core.ErrMissingArgument)
}

func TestPromptFunction_Errors(t *testing.T) {
	t.Run("no model", func(t *testing.T) {
		fn := NewPromptFunction("p", "f", "", "x", nil)
		_, err := fn.Invoke(context.Background(), nil)
		assert.ErrorIs(t, err, ErrModelNotConfigured)
	})

	t.Run("backend failure is returned unmodified", func(t *testing.T) {
		boom := errors.New("rate limited")
		m := model.NewMockModel("mock")
		m.SetError(boom)

		fn := NewPromptFunction("p", "f", "", "x", m)
		_, err := fn.Invoke(context.Background(), nil)
		assert.Same(t, boom, err)
	})
}
