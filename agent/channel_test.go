package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoHandler struct{}

func (echoHandler) InvokeHistory(_ context.Context, history []core.Content) ([]core.Content, error) {
	last := history[len(history)-1]
	return []core.Content{core.NewTextContent(core.RoleAssistant, "Processed: "+last.Text())}, nil
}

type failingHandler struct{ err error }

func (h failingHandler) InvokeHistory(context.Context, []core.Content) ([]core.Content, error) {
	return nil, h.err
}

func TestChatHistoryChannel_Receive(t *testing.T) {
	ch := NewChatHistoryChannel()

	err := ch.Receive(context.Background(), []core.Content{
		core.NewTextContent(core.RoleUser, "Hello"),
		core.NewTextContent(core.RoleAssistant, "Hi there"),
	})
	require.NoError(t, err)

	msgs := ch.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hello", msgs[0].Text())
	assert.Equal(t, "Hi there", msgs[1].Text())
}

func TestChatHistoryChannel_Invoke(t *testing.T) {
	ch := NewChatHistoryChannel()
	require.NoError(t, ch.Receive(context.Background(), []core.Content{core.NewTextContent(core.RoleUser, "Initial message")}))

	out, err := ch.Invoke(context.Background(), echoHandler{})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "Processed: Initial message", out[0].Text())

	msgs := ch.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
}

func TestChatHistoryChannel_InvokeInvalidAgent(t *testing.T) {
	ch := NewChatHistoryChannel()

	_, err := ch.Invoke(context.Background(), "not an agent")
	assert.ErrorIs(t, err, ErrInvalidAgentType)
}

func TestChatHistoryChannel_InvokeError(t *testing.T) {
	ch := NewChatHistoryChannel()
	require.NoError(t, ch.Receive(context.Background(), []core.Content{core.NewTextContent(core.RoleUser, "x")}))

	boom := errors.New("boom")
	_, err := ch.Invoke(context.Background(), failingHandler{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ch.Messages(), 1)
}

func TestChatHistoryChannel_History(t *testing.T) {
	ch := NewChatHistoryChannel()
	require.NoError(t, ch.Receive(context.Background(), []core.Content{
		core.NewTextContent(core.RoleUser, "first"),
		core.NewTextContent(core.RoleUser, "second"),
		core.NewTextContent(core.RoleUser, "third"),
	}))

	hist := ch.History()
	require.Len(t, hist, 3)
	assert.Equal(t, "third", hist[0].Text())
	assert.Equal(t, "first", hist[2].Text())

	// History must not reorder the stored messages.
	assert.Equal(t, "first", ch.Messages()[0].Text())
}

func TestAgent_Channel(t *testing.T) {
	a := New(func(o *Options) { o.Name = "plain" })
	assert.NotEmpty(t, a.ID())

	_, err := a.ChannelKeys()
	assert.ErrorIs(t, err, ErrChannelNotConfigured)
	_, err = a.CreateChannel()
	assert.ErrorIs(t, err, ErrChannelNotConfigured)

	b := New(func(o *Options) {
		o.ID = "fixed"
		o.ChannelKey = ChatHistoryChannelKey
		o.NewChannel = func() Channel { return NewChatHistoryChannel() }
	})
	assert.Equal(t, "fixed", b.ID())

	keys, err := b.ChannelKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{ChatHistoryChannelKey}, keys)

	ch, err := b.CreateChannel()
	require.NoError(t, err)
	assert.IsType(t, &ChatHistoryChannel{}, ch)
}

func TestChatCompletionAgent(t *testing.T) {
	m := model.NewMockModel("mock")
	m.AddResponse("What is 2+2?", "4")

	a := NewChatCompletionAgent(m, func(o *ChatCompletionOptions) {
		o.Name = "solver"
		o.Instructions = NewInstructionFromText("You are {{.persona}}.")
		o.Arguments = core.NewArguments(core.KV("persona", "a calculator"))
	})

	ch, err := a.CreateChannel()
	require.NoError(t, err)
	require.NoError(t, ch.Receive(context.Background(), []core.Content{core.NewTextContent(core.RoleUser, "What is 2+2?")}))

	out, err := ch.Invoke(context.Background(), a)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "4", out[0].Text())
	assert.Equal(t, "4", ch.History()[0].Text())

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "You are a calculator.", reqs[0].Instructions)
}

func TestChatCompletionAgent_ModelError(t *testing.T) {
	m := model.NewMockModel("mock")
	boom := errors.New("unavailable")
	m.SetError(boom)

	a := NewChatCompletionAgent(m)
	_, err := a.InvokeHistory(context.Background(), []core.Content{core.NewTextContent(core.RoleUser, "hi")})
	assert.ErrorIs(t, err, boom)
}
