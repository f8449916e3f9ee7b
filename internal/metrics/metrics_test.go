package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Command("save")
	m.Command("save")
	m.Command("help")
	m.Credits(1.25)
	m.Credits(3)
	m.TurnError()
	m.ObserveTurn(0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("save")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("help")))
	assert.Equal(t, 4.25, testutil.ToFloat64(m.CreditsEarned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TurnErrors))

	n, err := testutil.GatherAndCount(reg, "timebank_turn_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Command("save")
	m.Credits(1)
	m.TurnError()
	m.ObserveTurn(1)
}

func TestNewRegistry_IsolatedInstances(t *testing.T) {
	_, a := NewRegistry()
	_, b := NewRegistry()
	a.TurnError()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.TurnErrors))
}
