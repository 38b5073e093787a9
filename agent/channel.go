package agent

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/planmesh/core"
)

// ChatHistoryChannelKey is the channel key of ChatHistoryChannel.
const ChatHistoryChannelKey = "ChatHistoryChannel"

// Channel batches conversation turns between agents.
type Channel interface {
	// Receive appends messages to the channel.
	Receive(ctx context.Context, history []core.Content) error
	// Invoke lets agent respond to the channel; its messages are appended
	// and returned.
	Invoke(ctx context.Context, agent any) ([]core.Content, error)
	// History returns the messages, most recent first.
	History() []core.Content
}

// ChatHistoryHandler is implemented by agents that answer from a full chat history.
type ChatHistoryHandler interface {
	InvokeHistory(ctx context.Context, history []core.Content) ([]core.Content, error)
}

// ChatHistoryChannel is a Channel keeping the complete message history in
// memory. It is safe for concurrent use.
type ChatHistoryChannel struct {
	mu       sync.Mutex
	messages []core.Content
}

// NewChatHistoryChannel creates an empty channel.
func NewChatHistoryChannel() *ChatHistoryChannel {
	return &ChatHistoryChannel{}
}

// Receive appends history in order.
func (c *ChatHistoryChannel) Receive(_ context.Context, history []core.Content) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, history...)
	return nil
}

// Invoke hands the current history to agent, which must implement
// ChatHistoryHandler, and records its responses.
func (c *ChatHistoryChannel) Invoke(ctx context.Context, agent any) ([]core.Content, error) {
	handler, ok := agent.(ChatHistoryHandler)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not handle chat history", ErrInvalidAgentType, agent)
	}

	responses, err := handler.InvokeHistory(ctx, c.Messages())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.messages = append(c.messages, responses...)
	c.mu.Unlock()

	return responses, nil
}

// History returns a copy of the messages, most recent first.
func (c *ChatHistoryChannel) History() []core.Content {
	out := c.Messages()
	slices.Reverse(out)
	return out
}

// Messages returns a copy of the messages in chronological order.
func (c *ChatHistoryChannel) Messages() []core.Content {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.messages)
}
