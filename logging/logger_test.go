package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestPlanMeshLogger_ContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	l.WithComponent("plan").WithPlan("math_chain").WithContext("run", 7).Info("plan.step.start", "step_index", 0)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "plan.step.start", lines[0]["msg"])
	assert.Equal(t, "plan", lines[0]["component"])
	assert.Equal(t, "math_chain", lines[0]["plan"])
	assert.Equal(t, 7.0, lines[0]["run"])
	assert.Equal(t, 0.0, lines[0]["step_index"])
}

func TestPlanMeshLogger_WithDoesNotMutateReceiver(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf})
	_ = base.WithContext("k", "v").WithPlan("p")

	base.Info("hello")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "k")
	assert.NotContains(t, lines[0], "plan")
}

func TestPlanMeshLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Output: &buf})

	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["msg"])
}

func TestPlanMeshLogger_DomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf})

	l.LogFunctionCall("math.Add", time.Millisecond, nil)
	l.LogLLMCall("gpt-4o-mini", 12, time.Millisecond, errors.New("boom"))
	l.LogPlanExecution("chain", 2, time.Millisecond, nil)
	l.LogStepExecution("math.Add", 1, time.Millisecond, errors.New("bad"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)
	assert.Equal(t, "function.invoke.success", lines[0]["msg"])
	assert.Equal(t, "model.call.error", lines[1]["msg"])
	assert.Equal(t, "boom", lines[1]["error"])
	assert.Equal(t, "plan.run.success", lines[2]["msg"])
	assert.Equal(t, 2.0, lines[2]["step_count"])
	assert.Equal(t, "plan.step.error", lines[3]["msg"])
	assert.Equal(t, 1.0, lines[3]["step_index"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel("bogus"))
}

func TestOrNoOp(t *testing.T) {
	assert.IsType(t, NoOpLogger{}, OrNoOp(nil))
	l := NewDefaultSlogLogger()
	assert.Same(t, l, OrNoOp(l))
}

func TestLogFunctionCall_AcceptsAnyLogger(t *testing.T) {
	var buf bytes.Buffer
	var l Logger = NewLogger(&LoggerConfig{Level: LogLevelInfo, Output: &buf})

	LogFunctionCall(l, "math.Add", 3*time.Millisecond, nil, "plugin", "math")
	LogLLMCall(l, "mock", 5, time.Millisecond, errors.New("rate limited"), "agent", "helper")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "function.invoke.success", lines[0]["msg"])
	assert.Equal(t, 3.0, lines[0]["duration_ms"])
	assert.Equal(t, "math", lines[0]["plugin"])
	assert.Equal(t, "model.call.error", lines[1]["msg"])
	assert.Equal(t, "helper", lines[1]["agent"])
	assert.Equal(t, false, lines[1]["success"])

	assert.NotPanics(t, func() {
		LogFunctionCall(nil, "math.Add", 0, nil)
		LogLLMCall(nil, "mock", 0, 0, nil)
	})
}
