package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestArguments_InsertionOrder(t *testing.T) {
	args := NewArguments(KV("b", 1), KV("a", 2))
	args.Set("c", 3)
	args.Set("b", 10) // existing key keeps its position

	assert.Equal(t, []string{"b", "a", "c"}, args.Keys())
	assert.Equal(t, 10, args.Value("b", nil))
	assert.Equal(t, 3, args.Len())
}

func TestArguments_GetWithDefault(t *testing.T) {
	args := NewArguments(KV(InputKey, "hello"), KV("nil", nil))

	assert.Equal(t, "hello", args.Value(InputKey, ""))
	assert.Equal(t, "fallback", args.Value("missing", "fallback"))
	assert.Equal(t, "fallback", args.GetString("nil", "fallback"))
	assert.True(t, args.Has("nil"))

	_, ok := args.Get("missing")
	assert.False(t, ok)
}

func TestArguments_NilReceiver(t *testing.T) {
	var args *Arguments

	assert.Equal(t, 0, args.Len())
	assert.False(t, args.Has("x"))
	assert.Equal(t, "d", args.Value("x", "d"))
	assert.Empty(t, args.Keys())
	assert.Equal(t, 0, args.Clone().Len())
}

func TestArguments_ZeroValueIsUsable(t *testing.T) {
	var args Arguments
	args.Set("k", "v")
	assert.Equal(t, "v", args.GetString("k", ""))
}

func TestArguments_Merge(t *testing.T) {
	base := NewArguments(KV("a", "1"), KV("b", "2"))
	other := NewArguments(KV("c", "3"), KV("a", "override"), KV("d", "4"))

	base.Merge(other)

	assert.Equal(t, []string{"a", "b", "c", "d"}, base.Keys())
	assert.Equal(t, "override", base.GetString("a", ""))
}

func TestArguments_MergeMissing(t *testing.T) {
	base := NewArguments(KV("a", "keep"), KV("b", ""))
	other := NewArguments(KV("a", "ignored"), KV("b", "filled"), KV("c", "new"))

	base.MergeMissing(other)

	assert.Equal(t, "keep", base.GetString("a", ""))
	assert.Equal(t, "filled", base.GetString("b", ""))
	assert.Equal(t, "new", base.GetString("c", ""))
}

func TestArguments_CloneIsIndependent(t *testing.T) {
	orig := NewArguments(KV("a", "1"))
	c := orig.Clone()
	c.Set("a", "2")
	c.Set("b", "3")

	assert.Equal(t, "1", orig.GetString("a", ""))
	assert.False(t, orig.Has("b"))
}

func TestArguments_AllStopsEarly(t *testing.T) {
	args := NewArguments(KV("a", 1), KV("b", 2), KV("c", 3))

	var seen []string
	for k := range args.All() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}

	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestArgumentsFromMap_SortsKeys(t *testing.T) {
	args := ArgumentsFromMap(map[string]any{"z": 1, "a": 2, "m": 3})
	assert.Equal(t, []string{"a", "m", "z"}, args.Keys())
}

func TestArguments_JSONPreservesOrder(t *testing.T) {
	args := NewArguments(KV("zeta", "1"), KV("alpha", map[string]any{"x": 1.0}))

	b, err := json.Marshal(args)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alpha":{"x":1}}`, string(b))

	var decoded Arguments
	require.NoError(t, json.Unmarshal([]byte(`{"b":1,"a":"two","c":null}`), &decoded))
	assert.Equal(t, []string{"b", "a", "c"}, decoded.Keys())
	assert.Equal(t, 1.0, decoded.Value("b", nil))
}

func TestArguments_UnmarshalJSONRejectsArray(t *testing.T) {
	var decoded Arguments
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &decoded))
}

func TestArguments_YAMLPreservesOrder(t *testing.T) {
	var decoded Arguments
	require.NoError(t, yaml.Unmarshal([]byte("input: \"2\"\namount: 3\nnested:\n  k: v\n"), &decoded))

	assert.Equal(t, []string{"input", "amount", "nested"}, decoded.Keys())
	assert.Equal(t, "2", decoded.GetString("input", ""))
	assert.Equal(t, 3, decoded.Value("amount", nil))

	out, err := yaml.Marshal(&decoded)
	require.NoError(t, err)
	assert.Equal(t, "input: \"2\"\namount: 3\nnested:\n    k: v\n", string(out))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "text", Stringify("text"))
	assert.Equal(t, "42", Stringify(42))
	assert.Equal(t, `{"a":1}`, Stringify(map[string]any{"a": 1}))
	assert.Equal(t, "native", Stringify(KindNative))
}

func TestMissingArgumentError_Is(t *testing.T) {
	var err error = &MissingArgumentError{Function: "math.Add", Parameter: "amount"}
	assert.ErrorIs(t, err, ErrMissingArgument)
	assert.Contains(t, err.Error(), `"amount"`)
}
