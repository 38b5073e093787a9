// Package planmesh provides a high-level façade over the plan engine and its
// supporting services (plugin registry, model & logging). Most applications
// interact with this package by:
//  1. Creating a PlanMesh via New() (optionally with plugins, a model and callbacks)
//  2. Registering plugins of native and prompt functions
//  3. Building plans in code (NewPlan) or from YAML (LoadPlan, ParsePlan) and
//     invoking them
//
// Plans created through the façade share its logger and callbacks; prompt
// functions declared in YAML definitions use its model.
package planmesh

import (
	"context"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/logging"
	"github.com/hupe1980/planmesh/model"
	"github.com/hupe1980/planmesh/plan"
	"github.com/hupe1980/planmesh/plugin"
)

// Options configures the PlanMesh instance.
type Options struct {
	// Plugins registered at construction.
	Plugins []*plugin.Plugin

	// Model backs prompt functions declared inline in plan definitions.
	Model model.Model

	// Callbacks are attached to every plan built by the façade.
	Callbacks *plan.CallbackManager

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// PlanMesh is the high-level façade aggregating the registry and plan defaults.
type PlanMesh struct {
	opts     Options
	registry *plugin.Registry
}

// New creates a new PlanMesh. It fails when Plugins contains duplicate names.
func New(optFns ...func(o *Options)) (*PlanMesh, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)

	registry, err := plugin.NewRegistry(opts.Plugins...)
	if err != nil {
		return nil, err
	}

	return &PlanMesh{opts: opts, registry: registry}, nil
}

// RegisterPlugin adds a plugin to the registry.
func (m *PlanMesh) RegisterPlugin(p *plugin.Plugin) error { return m.registry.Register(p) }

// Registry returns the underlying plugin registry.
func (m *PlanMesh) Registry() *plugin.Registry { return m.registry }

// Function resolves a registered function.
func (m *PlanMesh) Function(pluginName, name string) (core.Function, error) {
	return m.registry.Function(pluginName, name)
}

// NewPlan creates an empty plan wired to the façade's logger and callbacks.
// optFns run after the defaults and may override them.
func (m *PlanMesh) NewPlan(optFns ...func(o *plan.Options)) *plan.Plan {
	return plan.New(append([]func(o *plan.Options){m.planDefaults}, optFns...)...)
}

// NewStep wraps a registered function into a step plan with local parameters.
func (m *PlanMesh) NewStep(pluginName, name string, params *core.Arguments, outputs ...string) (*plan.Plan, error) {
	fn, err := m.registry.Function(pluginName, name)
	if err != nil {
		return nil, err
	}

	return plan.FromFunction(fn, m.planDefaults, func(o *plan.Options) {
		o.Parameters = params
		o.Outputs = outputs
	}), nil
}

// ParsePlan builds a plan from a YAML definition, resolving functions in the
// registry.
func (m *PlanMesh) ParsePlan(data []byte) (*plan.Plan, error) {
	def, err := plan.ParseDefinition(data)
	if err != nil {
		return nil, err
	}
	return def.Build(m.registry, m.buildDefaults)
}

// LoadPlan reads a YAML definition file and builds the plan.
func (m *PlanMesh) LoadPlan(path string) (*plan.Plan, error) {
	def, err := plan.LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	return def.Build(m.registry, m.buildDefaults)
}

// Invoke runs p to completion with args and returns the final result.
func (m *PlanMesh) Invoke(ctx context.Context, p *plan.Plan, args *core.Arguments) (*core.FunctionResult, error) {
	pending := p.StepCount() - p.NextStepIndex()

	res, err := p.Invoke(ctx, args)

	m.opts.Logger.Debug("planmesh.invoke", "plan", p.Name(), "pending_steps", pending, "success", err == nil)

	return res, err
}

func (m *PlanMesh) planDefaults(o *plan.Options) {
	o.Logger = m.opts.Logger
	o.Callbacks = m.opts.Callbacks
}

func (m *PlanMesh) buildDefaults(o *plan.BuildOptions) {
	o.Model = m.opts.Model
	o.Logger = m.opts.Logger
	o.Callbacks = m.opts.Callbacks
}
