package util

import (
	"testing"

	"github.com/hupe1980/planmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addArgs struct {
	Input  string `json:"input" description:"First operand"`
	Amount string `json:"amount" description:"Second operand"`
	Note   *string
	Scale  int    `json:"scale,omitempty"`
	Mode   string `json:"mode" default:"fast"`
	hidden string
}

func TestParametersFromStruct(t *testing.T) {
	params := ParametersFromStruct(addArgs{})
	require.Len(t, params, 5)

	assert.Equal(t, core.Parameter{Name: "input", Description: "First operand", Type: "string", Required: true}, params[0])
	assert.Equal(t, "Note", params[2].Name)
	assert.False(t, params[2].Required)
	assert.Equal(t, "integer", params[3].Type)
	assert.False(t, params[3].Required)
	assert.Equal(t, "fast", params[4].Default)
	assert.False(t, params[4].Required)

	assert.Nil(t, ParametersFromStruct(42))
}

func TestSchemaFromParameters_RoundTripsThroughValidation(t *testing.T) {
	schema := SchemaFromParameters([]core.Parameter{
		{Name: "x", Type: "integer", Required: true},
		{Name: "label", Type: "string"},
	})

	assert.NoError(t, ValidateParameters(map[string]any{"x": 5}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)

	err = ValidateParameters(map[string]any{"x": 1, "label": 3}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "expected type string")
}

func TestValidateParameters_AcceptsAnyRequiredShape(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{"x": map[string]any{"type": "number"}},
		"required":   []any{"x"},
	}
	assert.Error(t, ValidateParameters(map[string]any{}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"x": 1.5}, schema))
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("Summarize: {{.input}} ({{upper .lang}})", map[string]any{"input": "text", "lang": "en"})
	require.NoError(t, err)
	assert.Equal(t, "Summarize: text (EN)", out)

	out, err = RenderTemplate("plain & <raw>", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain & <raw>", out)

	out, err = RenderTemplate("<{{.missing}}>{{default \"x\" .empty}}", map[string]any{"empty": ""})
	require.NoError(t, err)
	assert.Equal(t, "<>x", out)

	_, err = RenderTemplate("{{.broken", nil)
	assert.Error(t, err)
}
