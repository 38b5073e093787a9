package plan

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/logging"
)

// ResultKey accumulates the results of steps whose outputs the plan itself
// declares as outputs.
const ResultKey = "PLAN.RESULT"

var variablePattern = regexp.MustCompile(`\$(\w+)`)

// Options configures a Plan.
type Options struct {
	// Name defaults to "plan_<id>". Ignored when Function is set.
	Name string
	// Description defaults to "". Ignored when Function is set.
	Description string
	// Function attaches a single function to the plan.
	Function core.Function
	// State seeds the working memory. The plan takes ownership of the store.
	State *core.Arguments
	// Parameters are the plan's local input bindings when it runs as a step.
	// String values may reference parent state entries as $name.
	Parameters *core.Arguments
	// Outputs names the parent state keys the step result is stored under.
	Outputs []string
	Logger  logging.Logger
	// Callbacks fire around each step of this plan.
	Callbacks *CallbackManager
}

// Plan is an ordered, steppable sequence of functions sharing an argument store.
type Plan struct {
	name          string
	pluginName    string
	description   string
	function      core.Function
	state         *core.Arguments
	parameters    *core.Arguments
	outputs       []string
	steps         []*Plan
	nextStepIndex int
	logger        logging.Logger
	callbacks     *CallbackManager
}

// New creates a plan. Plans always start without steps; use AddSteps.
func New(optFns ...func(o *Options)) *Plan {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	p := &Plan{
		name:        opts.Name,
		description: opts.Description,
		state:       opts.State,
		parameters:  opts.Parameters,
		outputs:     slices.Clone(opts.Outputs),
		logger:      logging.OrNoOp(opts.Logger),
		callbacks:   opts.Callbacks,
	}

	if p.state == nil {
		p.state = core.NewArguments()
	}
	if p.parameters == nil {
		p.parameters = core.NewArguments()
	}

	if opts.Function != nil {
		p.function = opts.Function
		p.name = opts.Function.Name()
		p.pluginName = opts.Function.PluginName()
		p.description = opts.Function.Description()
		return p
	}

	if p.name == "" {
		p.name = "plan_" + newID()
	}
	p.pluginName = "p_" + newID()

	return p
}

// FromFunction wraps fn in a single-function plan.
func FromFunction(fn core.Function, optFns ...func(o *Options)) *Plan {
	return New(append([]func(o *Options){func(o *Options) { o.Function = fn }}, optFns...)...)
}

var generatedNamePattern = regexp.MustCompile(`^(plan|p)_[0-9a-f]{32}$`)

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsGeneratedName reports whether name is a default plan or plugin name
// ("plan_<id>" or "p_<id>") rather than one given by the caller.
func IsGeneratedName(name string) bool {
	return generatedNamePattern.MatchString(name)
}

func (p *Plan) Name() string        { return p.name }
func (p *Plan) PluginName() string  { return p.pluginName }
func (p *Plan) Description() string { return p.description }

// Function returns the attached function or nil for container plans.
func (p *Plan) Function() core.Function { return p.function }

// Inputs returns the attached function's declared inputs.
func (p *Plan) Inputs() []core.Parameter {
	if p.function == nil {
		return nil
	}
	return p.function.Inputs()
}

// Kind is KindNone for container plans and the function's kind otherwise.
func (p *Plan) Kind() core.Kind {
	if p.function == nil {
		return core.KindNone
	}
	return p.function.Kind()
}

// IsNative reports whether a native function is attached.
func (p *Plan) IsNative() bool { return p.Kind() == core.KindNative }

// IsPrompt reports whether a prompt function is attached.
func (p *Plan) IsPrompt() bool { return p.Kind() == core.KindPrompt }

// ExecutionSettings returns the attached prompt function's settings, or nil.
func (p *Plan) ExecutionSettings() *core.ExecutionSettings {
	if !p.IsPrompt() {
		return nil
	}
	return p.function.ExecutionSettings()
}

// State returns the plan's working memory. Never nil.
func (p *Plan) State() *core.Arguments { return p.state }

// Parameters returns the plan's local input bindings. Never nil.
func (p *Plan) Parameters() *core.Arguments { return p.parameters }

// Outputs returns a copy of the output names.
func (p *Plan) Outputs() []string { return slices.Clone(p.outputs) }

// Steps returns a copy of the step sequence.
func (p *Plan) Steps() []*Plan { return slices.Clone(p.steps) }

// StepCount returns the number of steps.
func (p *Plan) StepCount() int { return len(p.steps) }

// NextStepIndex returns the cursor: the index of the next step to run.
func (p *Plan) NextStepIndex() int { return p.nextStepIndex }

// HasNextStep reports whether a step remains to be run.
func (p *Plan) HasNextStep() bool { return p.nextStepIndex < len(p.steps) }

// AddSteps appends functions or plans as steps. Bare functions are wrapped in
// single-function plans sharing this plan's logger and callbacks. All items
// are validated first; on error nothing is added.
func (p *Plan) AddSteps(items ...core.Function) error {
	for i, item := range items {
		if err := p.validateStep(item); err != nil {
			return fmt.Errorf("add step %d: %w", i, err)
		}
	}

	for _, item := range items {
		if sp, ok := item.(*Plan); ok {
			p.steps = append(p.steps, sp)
			continue
		}
		p.steps = append(p.steps, New(func(o *Options) {
			o.Function = item
			o.Logger = p.logger
			o.Callbacks = p.callbacks
		}))
	}

	return nil
}

func (p *Plan) validateStep(item core.Function) error {
	if item == nil {
		return fmt.Errorf("%w: nil", ErrInvalidStepType)
	}
	sp, ok := item.(*Plan)
	if !ok {
		if item.Kind() == core.KindNone {
			return fmt.Errorf("%w: %T is not executable", ErrInvalidStepType, item)
		}
		return nil
	}
	if sp == nil {
		return fmt.Errorf("%w: nil plan", ErrInvalidStepType)
	}
	if sp.contains(p) {
		return fmt.Errorf("%w: plan %s would contain itself", ErrInvalidStepType, p.name)
	}
	return nil
}

func (p *Plan) contains(target *Plan) bool {
	if p == target {
		return true
	}
	for _, s := range p.steps {
		if s.contains(target) {
			return true
		}
	}
	return false
}

// InvokeNextStep runs the step at the cursor, merges its result into the
// state and advances the cursor. Step failures are returned unmodified and
// leave the cursor unchanged.
func (p *Plan) InvokeNextStep(ctx context.Context) (*core.FunctionResult, error) {
	if !p.HasNextStep() {
		return nil, ErrNoNextStep
	}

	index := p.nextStepIndex
	step := p.steps[index]
	args := p.stepArguments(step)

	cbCtx := &CallbackContext{
		PlanName:   p.name,
		StepIndex:  index,
		StepName:   step.name,
		PluginName: step.pluginName,
		Arguments:  args,
		State:      p.state,
		Metadata:   map[string]any{},
	}

	if err := p.callbacks.ExecuteCallbacks(ctx, CallbackBeforeStep, cbCtx); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("plan.step.start", "plan", p.name, "step", step.name, "step_index", index)
	start := time.Now()

	result, err := step.invokeAsStep(ctx, args)

	cbCtx.Duration = time.Since(start)
	if err != nil {
		p.logger.Error("plan.step.error", "plan", p.name, "step", step.name, "step_index", index,
			"duration_ms", cbCtx.Duration.Milliseconds(), "error", err.Error())

		cbCtx.Err = err
		if cbErr := p.callbacks.ExecuteCallbacks(ctx, CallbackOnError, cbCtx); cbErr != nil {
			p.logger.Warn("plan.callback.error", "plan", p.name, "callback", CallbackOnError, "error", cbErr.Error())
		}
		return nil, err
	}

	p.mergeResult(step, result)
	p.nextStepIndex++

	p.logger.Info("plan.step.success", "plan", p.name, "step", step.name, "step_index", index,
		"duration_ms", cbCtx.Duration.Milliseconds())

	cbCtx.Result = result
	if err := p.callbacks.ExecuteCallbacks(ctx, CallbackAfterStep, cbCtx); err != nil {
		return result, err
	}

	return result, nil
}

// Invoke runs the plan as a function.
//
// A plan with an attached function and no steps delegates to that function;
// args are completed from the plan parameters and state. Otherwise args fill
// the empty or missing state entries and the remaining steps run in order.
// The result is the state's input entry. Invoking a completed plan runs
// nothing and returns the same result again.
func (p *Plan) Invoke(ctx context.Context, args *core.Arguments) (*core.FunctionResult, error) {
	if p.function != nil && len(p.steps) == 0 {
		return p.invokeFunction(ctx, args)
	}

	if p.HasNextStep() || len(p.steps) == 0 {
		p.state.MergeMissing(args)
	}

	if p.HasNextStep() {
		p.logger.Debug("plan.run.start", "plan", p.name, "step_count", len(p.steps), "next_step_index", p.nextStepIndex)
		start := time.Now()

		for p.HasNextStep() {
			if _, err := p.InvokeNextStep(ctx); err != nil {
				p.logger.Error("plan.run.error", "plan", p.name, "next_step_index", p.nextStepIndex,
					"duration_ms", time.Since(start).Milliseconds(), "error", err.Error())
				return nil, err
			}
		}

		p.logger.Info("plan.run.success", "plan", p.name, "step_count", len(p.steps),
			"duration_ms", time.Since(start).Milliseconds())
	}

	return core.NewFunctionResult(p, p.state.Value(core.InputKey, "")), nil
}

// invokeAsStep runs p as a step of a parent plan. A nested plan starting at
// its first step takes args as bindings, overwriting entries left by an
// earlier run; a resumed nested plan keeps its state.
func (p *Plan) invokeAsStep(ctx context.Context, args *core.Arguments) (*core.FunctionResult, error) {
	if len(p.steps) > 0 && p.nextStepIndex == 0 {
		p.state.Merge(args)
	}
	return p.Invoke(ctx, args)
}

// invokeFunction calls the attached function. Caller arguments win over the
// plan parameters, which win over the plan state.
func (p *Plan) invokeFunction(ctx context.Context, args *core.Arguments) (*core.FunctionResult, error) {
	callArgs := args.Clone()

	for k, v := range p.parameters.All() {
		if !callArgs.Has(k) {
			callArgs.Set(k, expandVariables(v, p.state))
		}
	}
	for k, v := range p.state.All() {
		if !callArgs.Has(k) {
			callArgs.Set(k, v)
		}
	}

	return p.function.Invoke(ctx, callArgs)
}

// Reset rewinds the cursor of the plan and all nested plans to 0. The state is kept.
func (p *Plan) Reset() {
	p.nextStepIndex = 0
	for _, s := range p.steps {
		s.Reset()
	}
}

// stepArguments resolves the arguments of step from its local bindings and
// this plan's state. Local bindings win; state fills the gaps.
func (p *Plan) stepArguments(step *Plan) *core.Arguments {
	args := core.NewArguments()

	for k, v := range step.parameters.All() {
		args.Set(k, expandVariables(v, p.state))
	}

	for _, in := range step.Inputs() {
		if !core.IsEmptyValue(args.Value(in.Name, nil)) {
			continue
		}
		if v := p.state.Value(in.Name, nil); !core.IsEmptyValue(v) {
			args.Set(in.Name, v)
		}
	}

	if core.IsEmptyValue(args.Value(core.InputKey, nil)) {
		if v := p.state.Value(core.InputKey, nil); !core.IsEmptyValue(v) {
			args.Set(core.InputKey, v)
		}
	}

	for k, v := range p.state.All() {
		if !args.Has(k) {
			args.Set(k, v)
		}
	}

	return args
}

// mergeResult stores the step result as the new input, under each step
// output, and appends it to ResultKey when the plan declares a matching output.
func (p *Plan) mergeResult(step *Plan, result *core.FunctionResult) {
	value := strings.TrimSpace(result.String())

	p.state.Set(core.InputKey, value)

	aggregate := false
	for _, o := range step.outputs {
		p.state.Set(o, value)
		if slices.Contains(p.outputs, o) {
			aggregate = true
		}
	}

	if aggregate {
		if prev := p.state.GetString(ResultKey, ""); prev != "" {
			value = prev + "\n" + value
		}
		p.state.Set(ResultKey, value)
	}
}

// expandVariables replaces $name references in string values with the
// matching state entry. Unknown references are left as they are.
func expandVariables(v any, state *core.Arguments) any {
	s, ok := v.(string)
	if !ok || !strings.Contains(s, "$") {
		return v
	}

	return variablePattern.ReplaceAllStringFunc(s, func(ref string) string {
		if val, ok := state.Get(ref[1:]); ok {
			return core.Stringify(val)
		}
		return ref
	})
}
