package plan

import (
	"encoding/json"

	"github.com/hupe1980/planmesh/core"
)

type planJSON struct {
	Name          string          `json:"name"`
	PluginName    string          `json:"plugin_name"`
	Description   string          `json:"description"`
	Kind          string          `json:"kind"`
	Function      string          `json:"function,omitempty"`
	State         *core.Arguments `json:"state"`
	Parameters    *core.Arguments `json:"parameters"`
	Outputs       []string        `json:"outputs,omitempty"`
	NextStepIndex int             `json:"next_step_index"`
	Steps         []*Plan         `json:"steps"`
}

// MarshalJSON encodes the plan tree including state and cursor positions,
// e.g. for tracing or for inspecting a plan between steps.
func (p *Plan) MarshalJSON() ([]byte, error) {
	out := planJSON{
		Name:          p.name,
		PluginName:    p.pluginName,
		Description:   p.description,
		Kind:          p.Kind().String(),
		State:         p.state,
		Parameters:    p.parameters,
		Outputs:       p.outputs,
		NextStepIndex: p.nextStepIndex,
		Steps:         p.steps,
	}
	if p.function != nil {
		out.Function = core.FullyQualifiedName(p.function)
	}
	if out.Steps == nil {
		out.Steps = []*Plan{}
	}
	return json.Marshal(out)
}
