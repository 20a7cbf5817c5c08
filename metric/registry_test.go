package metric

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/flowkit/errors"
)

func newTestCounter(name string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flowkit",
		Subsystem: "test",
		Name:      name,
		Help:      "test counter",
	})
}

func TestRegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := newTestCounter("items_total")
	require.NoError(t, registry.RegisterCounter("takelast", "items", counter))

	counter.Add(3)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() == "flowkit_test_items_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, 3.0, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "registered counter should be gatherable")
}

func TestRegisterDuplicate(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NoError(t, registry.RegisterCounter("takelast", "items", newTestCounter("dup_total")))

	err := registry.RegisterCounter("takelast", "items", newTestCounter("other_total"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err), "duplicate registration should classify as invalid")
}

func TestRegisterGauge(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flowkit",
		Subsystem: "test",
		Name:      "buffer_size",
		Help:      "test gauge",
	})
	require.NoError(t, registry.RegisterGauge("takelast", "buffer_size", gauge))

	gauge.Set(7)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := false
	for _, f := range families {
		if f.GetName() == "flowkit_test_buffer_size" {
			found = true
			assert.Equal(t, 7.0, f.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found)
}

func TestUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := newTestCounter("gone_total")
	require.NoError(t, registry.RegisterCounter("takelast", "gone", counter))

	assert.True(t, registry.Unregister("takelast", "gone"))
	assert.False(t, registry.Unregister("takelast", "gone"), "second unregister should report false")

	// Slot is free again after unregistering
	require.NoError(t, registry.RegisterCounter("takelast", "gone", newTestCounter("gone_total")))
}

func TestHandler(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := newTestCounter("served_total")
	require.NoError(t, registry.RegisterCounter("takelast", "served", counter))
	counter.Inc()

	srv := httptest.NewServer(registry.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
