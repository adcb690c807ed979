package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.RecordsDropped.Add(3)

	assert.InDelta(t, 3, testutil.ToFloat64(a.RecordsDropped), 1e-9)
	assert.InDelta(t, 0, testutil.ToFloat64(b.RecordsDropped), 1e-9)
}

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsForTesting()
	require.NoError(t, m.Register(reg))

	m.LoadsTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.FieldResolutionMisses.WithLabelValues("descripcion").Inc()
	m.EventsLoaded.Set(12)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "hechos_loads_total")
	assert.Contains(t, names, "hechos_field_resolution_misses_total")
	assert.Contains(t, names, "hechos_events_loaded")

	assert.Error(t, m.Register(reg), "registering twice must fail")
}
