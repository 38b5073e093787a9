package plan

import (
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/function"
	"github.com/hupe1980/planmesh/logging"
	"github.com/hupe1980/planmesh/model"
	"github.com/hupe1980/planmesh/plugin"
	"gopkg.in/yaml.v3"
)

// Resolver resolves a (plugin, function) pair. *plugin.Registry implements it.
type Resolver interface {
	Function(pluginName, name string) (core.Function, error)
}

// Definition is the declarative YAML form of a plan.
//
//	name: math_chain
//	state:
//	  input: "2"
//	steps:
//	  - function: math.Add
//	    parameters:
//	      amount: "3"
//	  - function: math.Subtract
//	    parameters:
//	      amount: "1"
type Definition struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description,omitempty"`
	State       *core.Arguments      `yaml:"state,omitempty"`
	Outputs     []string             `yaml:"outputs,omitempty"`
	Functions   []FunctionDefinition `yaml:"functions,omitempty"`
	Steps       []StepDefinition     `yaml:"steps"`
}

// FunctionDefinition declares an inline prompt function that steps can
// reference as plugin.name.
type FunctionDefinition struct {
	Plugin       string                  `yaml:"plugin"`
	Name         string                  `yaml:"name"`
	Description  string                  `yaml:"description,omitempty"`
	Template     string                  `yaml:"template"`
	Instructions string                  `yaml:"instructions,omitempty"`
	Parameters   []core.Parameter        `yaml:"parameters,omitempty"`
	Settings     *core.ExecutionSettings `yaml:"settings,omitempty"`
}

// StepDefinition is a step referencing either a function or a nested plan.
type StepDefinition struct {
	Function   string          `yaml:"function,omitempty"`
	Plan       *Definition     `yaml:"plan,omitempty"`
	Parameters *core.Arguments `yaml:"parameters,omitempty"`
	Outputs    []string        `yaml:"outputs,omitempty"`
}

// BuildOptions configures Definition.Build.
type BuildOptions struct {
	// Model backs the inline prompt functions.
	Model     model.Model
	Logger    logging.Logger
	Callbacks *CallbackManager
}

// ParseDefinition decodes a YAML plan definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse plan definition: %w", err)
	}
	return &def, nil
}

// LoadDefinition reads and decodes a YAML plan definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan definition: %w", err)
	}
	return ParseDefinition(data)
}

// Build turns the definition into a runnable plan. Inline functions take
// precedence over functions known to resolver; resolver may be nil when
// every step uses inline functions.
func (d *Definition) Build(resolver Resolver, optFns ...func(o *BuildOptions)) (*Plan, error) {
	opts := BuildOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return d.build(resolver, opts, map[string]core.Function{})
}

func (d *Definition) build(resolver Resolver, opts BuildOptions, inherited map[string]core.Function) (*Plan, error) {
	inline := make(map[string]core.Function, len(inherited)+len(d.Functions))
	for k, v := range inherited {
		inline[k] = v
	}

	for _, fd := range d.Functions {
		if opts.Model == nil {
			return nil, fmt.Errorf("plan %s: function %s.%s: %w", d.Name, fd.Plugin, fd.Name, function.ErrModelNotConfigured)
		}
		inline[fd.Plugin+"."+fd.Name] = function.NewPromptFunction(fd.Plugin, fd.Name, fd.Description, fd.Template, opts.Model,
			func(o *function.PromptOptions) {
				o.Inputs = fd.Parameters
				o.Settings = fd.Settings
				o.Instructions = fd.Instructions
				o.Logger = opts.Logger
			})
	}

	p := New(func(o *Options) {
		o.Name = d.Name
		o.Description = d.Description
		o.State = d.State.Clone()
		o.Outputs = d.Outputs
		o.Logger = opts.Logger
		o.Callbacks = opts.Callbacks
	})

	for i, sd := range d.Steps {
		step, err := sd.build(resolver, opts, inline)
		if err != nil {
			return nil, fmt.Errorf("plan %s: step %d: %w", p.Name(), i, err)
		}
		if err := p.AddSteps(step); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (sd StepDefinition) build(resolver Resolver, opts BuildOptions, inline map[string]core.Function) (*Plan, error) {
	switch {
	case sd.Function != "" && sd.Plan != nil:
		return nil, fmt.Errorf("%w: step sets both function and plan", ErrInvalidStepType)
	case sd.Plan != nil:
		nested, err := sd.Plan.build(resolver, opts, inline)
		if err != nil {
			return nil, err
		}
		if sd.Parameters != nil {
			nested.parameters = sd.Parameters.Clone()
		}
		if len(sd.Outputs) > 0 {
			nested.outputs = append([]string(nil), sd.Outputs...)
		}
		return nested, nil
	case sd.Function != "":
		fn, err := resolveFunction(sd.Function, resolver, inline)
		if err != nil {
			return nil, err
		}
		return FromFunction(fn, func(o *Options) {
			o.Parameters = sd.Parameters.Clone()
			o.Outputs = sd.Outputs
			o.Logger = opts.Logger
			o.Callbacks = opts.Callbacks
		}), nil
	default:
		return nil, fmt.Errorf("%w: step sets neither function nor plan", ErrInvalidStepType)
	}
}

func resolveFunction(ref string, resolver Resolver, inline map[string]core.Function) (core.Function, error) {
	if fn, ok := inline[ref]; ok {
		return fn, nil
	}

	pluginName, name, ok := strings.Cut(ref, ".")
	if !ok || pluginName == "" || name == "" {
		return nil, fmt.Errorf("%w: function reference %q must be plugin.name", ErrInvalidStepType, ref)
	}
	if resolver == nil {
		return nil, fmt.Errorf("%w: %s", plugin.ErrFunctionNotFound, ref)
	}
	return resolver.Function(pluginName, name)
}
