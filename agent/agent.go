package agent

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrChannelNotConfigured is returned by agents without a channel factory.
	ErrChannelNotConfigured = errors.New("channel type not configured")
	// ErrInvalidAgentType is returned when a channel cannot drive the given agent.
	ErrInvalidAgentType = errors.New("invalid agent type for channel")
)

// Options configures an Agent.
type Options struct {
	// ID defaults to a random UUID.
	ID           string
	Name         string
	Description  string
	Instructions Instruction
	// ChannelKey identifies the channel type; agents sharing a key share a channel.
	ChannelKey string
	// NewChannel creates the channel the agent communicates through.
	NewChannel func() Channel
}

// Agent carries identity, descriptive metadata and the channel protocol an
// agent participates in. Concrete agents embed it.
type Agent struct {
	id           string
	name         string
	description  string
	instructions Instruction
	channelKey   string
	newChannel   func() Channel
}

// New creates an Agent.
func New(optFns ...func(o *Options)) *Agent {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}

	return &Agent{
		id:           opts.ID,
		name:         opts.Name,
		description:  opts.Description,
		instructions: opts.Instructions,
		channelKey:   opts.ChannelKey,
		newChannel:   opts.NewChannel,
	}
}

// ID returns the unique agent identifier.
func (a *Agent) ID() string { return a.id }

// Name returns the agent name, which may be empty.
func (a *Agent) Name() string { return a.name }

// Description returns the agent description, which may be empty.
func (a *Agent) Description() string { return a.description }

// Instructions returns the configured instructions.
func (a *Agent) Instructions() Instruction { return a.instructions }

// ChannelKeys returns the keys identifying the channel type of this agent.
func (a *Agent) ChannelKeys() ([]string, error) {
	if a.newChannel == nil || a.channelKey == "" {
		return nil, ErrChannelNotConfigured
	}
	return []string{a.channelKey}, nil
}

// CreateChannel creates a new channel for this agent.
func (a *Agent) CreateChannel() (Channel, error) {
	if a.newChannel == nil {
		return nil, ErrChannelNotConfigured
	}
	return a.newChannel(), nil
}
