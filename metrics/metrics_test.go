package metrics

import (
	"context"
	"testing"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/plan"
	mathplugin "github.com/hupe1980/planmesh/plugins/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mathStep(t *testing.T, name, amount string) *plan.Plan {
	t.Helper()
	fn, err := mathplugin.New().Function(name)
	require.NoError(t, err)
	return plan.FromFunction(fn, func(o *plan.Options) {
		o.Parameters = core.NewArguments(core.KV("amount", amount))
	})
}

func TestCollector_CountsSteps(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(func(o *Options) { o.Registerer = reg })
	require.NoError(t, err)

	cm := plan.NewCallbackManager()
	c.Attach(cm)

	p := plan.New(func(o *plan.Options) {
		o.Name = "calc"
		o.Callbacks = cm
	})
	require.NoError(t, p.AddSteps(mathStep(t, "Add", "2"), mathStep(t, "Divide", "0")))

	_, err = p.Invoke(context.Background(), core.NewArguments(core.KV("input", "1")))
	require.ErrorIs(t, err, mathplugin.ErrDivisionByZero)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.steps.WithLabelValues("calc", "math.Add", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.steps.WithLabelValues("calc", "math.Divide", StatusError)))
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
}

func TestCollector_GeneratedNamesAreAnonymous(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(func(o *Options) { o.Registerer = reg })
	require.NoError(t, err)

	cm := plan.NewCallbackManager()
	c.Attach(cm)

	for i := 0; i < 3; i++ {
		inner := plan.New()
		require.NoError(t, inner.AddSteps(mathStep(t, "Add", "1")))

		outer := plan.New(func(o *plan.Options) { o.Callbacks = cm })
		require.NoError(t, outer.AddSteps(inner, mathStep(t, "Add", "1")))

		_, err = outer.Invoke(context.Background(), core.NewArguments(core.KV("input", "1")))
		require.NoError(t, err)
	}

	assert.Equal(t, 2, testutil.CollectAndCount(c.steps))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.steps.WithLabelValues(AnonymousLabel, AnonymousLabel, StatusSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.steps.WithLabelValues(AnonymousLabel, "math.Add", StatusSuccess)))
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewCollector(func(o *Options) { o.Registerer = reg })
	require.NoError(t, err)

	_, err = NewCollector(func(o *Options) { o.Registerer = reg })
	assert.Error(t, err)
}

func TestCollector_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(func(o *Options) {
		o.Registerer = reg
		o.Namespace = "custom"
	})
	require.NoError(t, err)

	c.steps.WithLabelValues("p", "f", StatusSuccess).Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "custom_plan_steps_total", families[0].GetName())
}
