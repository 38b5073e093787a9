package openai

import (
	"testing"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/model"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages(model.Request{
		Instructions: "be terse",
		Contents: []core.Content{
			core.NewTextContent(core.RoleUser, "hi"),
			core.NewTextContent(core.RoleAssistant, "hello"),
			core.NewTextContent(core.RoleUser, ""),
		},
	})

	require.Len(t, msgs, 3)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	assert.NotNil(t, msgs[2].OfAssistant)
}

func TestBuildParams_SettingsOverrideDefaults(t *testing.T) {
	m := NewModelFromClient(&openai.Client{}, func(o *Options) { o.Model = "gpt-default" })

	params := m.buildParams(model.Request{Contents: []core.Content{core.NewTextContent(core.RoleUser, "x")}})
	assert.Equal(t, "gpt-default", params.Model)

	params = m.buildParams(model.Request{
		Contents: []core.Content{core.NewTextContent(core.RoleUser, "x")},
		Settings: &core.ExecutionSettings{ModelID: "gpt-override"},
	})
	assert.Equal(t, "gpt-override", params.Model)
}

func TestInfo(t *testing.T) {
	m := NewModelFromClient(&openai.Client{})
	assert.Equal(t, model.Info{Name: openai.ChatModelGPT4oMini, Provider: "openai"}, m.Info())
}
