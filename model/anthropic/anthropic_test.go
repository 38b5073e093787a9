package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParams(t *testing.T) {
	m := NewModelFromClient(&anthropic.Client{})
	maxTokens := 128

	params := m.buildParams(model.Request{
		Instructions: "answer briefly",
		Contents: []core.Content{
			core.NewTextContent(core.RoleSystem, "extra rules"),
			core.NewTextContent(core.RoleUser, "hi"),
			core.NewTextContent(core.RoleAssistant, "hello"),
		},
		Settings: &core.ExecutionSettings{
			ModelID:       "claude-test",
			MaxTokens:     &maxTokens,
			StopSequences: []string{"END"},
		},
	})

	assert.Equal(t, anthropic.Model("claude-test"), params.Model)
	assert.Equal(t, int64(128), params.MaxTokens)
	assert.Equal(t, []string{"END"}, params.StopSequences)
	require.Len(t, params.System, 2)
	assert.Equal(t, "answer briefly", params.System[0].Text)
	assert.Len(t, params.Messages, 2)
}

func TestInfo(t *testing.T) {
	m := NewModelFromClient(&anthropic.Client{}, func(o *Options) { o.Model = "claude-x" })
	assert.Equal(t, model.Info{Name: "claude-x", Provider: "anthropic"}, m.Info())
}
