// Package plugin groups functions under a plugin name and resolves
// (plugin, function) pairs to core.Function descriptors.
package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/planmesh/core"
)

var (
	// ErrPluginNotFound is returned when no plugin with the requested name is registered.
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrFunctionNotFound is returned when a plugin has no function with the requested name.
	ErrFunctionNotFound = errors.New("function not found")
	// ErrDuplicatePlugin is returned when registering a plugin name twice.
	ErrDuplicatePlugin = errors.New("plugin already registered")
)

// Plugin is a named, immutable collection of functions.
type Plugin struct {
	name        string
	description string
	functions   map[string]core.Function
	order       []string
}

// New creates a plugin. Functions keep their own plugin name; callers are
// expected to construct them with name as their plugin name.
func New(name, description string, functions ...core.Function) *Plugin {
	p := &Plugin{
		name:        name,
		description: description,
		functions:   make(map[string]core.Function, len(functions)),
	}
	for _, fn := range functions {
		if _, exists := p.functions[fn.Name()]; !exists {
			p.order = append(p.order, fn.Name())
		}
		p.functions[fn.Name()] = fn
	}
	return p
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return p.name }

// Description returns the plugin description.
func (p *Plugin) Description() string { return p.description }

// Function looks up a function by name.
func (p *Plugin) Function(name string) (core.Function, error) {
	fn, ok := p.functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrFunctionNotFound, p.name, name)
	}
	return fn, nil
}

// Functions returns the functions in registration order.
func (p *Plugin) Functions() []core.Function {
	out := make([]core.Function, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.functions[name])
	}
	return out
}

// Registry holds plugins by name. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]*Plugin
}

// NewRegistry creates a registry pre-populated with plugins.
func NewRegistry(plugins ...*Plugin) (*Registry, error) {
	r := &Registry{plugins: make(map[string]*Plugin)}
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a plugin. Names must be unique.
func (r *Registry) Register(p *Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.plugins == nil {
		r.plugins = make(map[string]*Plugin)
	}
	if _, exists := r.plugins[p.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, p.name)
	}
	r.plugins[p.name] = p
	return nil
}

// Plugin returns the plugin registered under name.
func (r *Registry) Plugin(name string) (*Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	return p, nil
}

// Function resolves a (plugin, function) pair. A missing plugin reports both
// ErrPluginNotFound and ErrFunctionNotFound.
func (r *Registry) Function(pluginName, name string) (core.Function, error) {
	p, err := r.Plugin(pluginName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFunctionNotFound, err)
	}
	return p.Function(name)
}

// Plugins returns all plugins sorted by name.
func (r *Registry) Plugins() []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
