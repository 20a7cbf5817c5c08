package takelast

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/flowkit/metric"
)

// operatorMetrics holds Prometheus metrics for operator activity.
type operatorMetrics struct {
	buffered prometheus.Counter
	trimmed  prometheus.Counter
	emitted  prometheus.Counter

	size prometheus.Gauge
}

// newOperatorMetrics creates and registers operator metrics with the provided registry.
func newOperatorMetrics(registry *metric.MetricsRegistry, prefix string) (*operatorMetrics, error) {
	m := &operatorMetrics{
		buffered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowkit",
			Subsystem:   "takelast",
			Name:        "buffered_total",
			ConstLabels: prometheus.Labels{"operator": prefix},
			Help:        "Total number of items appended to the trailing-window buffer",
		}),
		trimmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowkit",
			Subsystem:   "takelast",
			Name:        "trimmed_total",
			ConstLabels: prometheus.Labels{"operator": prefix},
			Help:        "Total number of items evicted by the age/count window",
		}),
		emitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "flowkit",
			Subsystem:   "takelast",
			Name:        "emitted_total",
			ConstLabels: prometheus.Labels{"operator": prefix},
			Help:        "Total number of items delivered downstream",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "flowkit",
			Subsystem:   "takelast",
			Name:        "buffer_size",
			ConstLabels: prometheus.Labels{"operator": prefix},
			Help:        "Current number of items retained in the buffer",
		}),
	}

	if err := registry.RegisterCounter(prefix, "takelast_buffered", m.buffered); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "takelast_trimmed", m.trimmed); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "takelast_emitted", m.emitted); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "takelast_buffer_size", m.size); err != nil {
		return nil, err
	}

	return m, nil
}

// recordAppend increments the buffered counter and updates the size gauge.
func (m *operatorMetrics) recordAppend(size int) {
	m.buffered.Inc()
	m.size.Set(float64(size))
}

// recordTrim increments the trimmed counter and updates the size gauge.
func (m *operatorMetrics) recordTrim(size int) {
	m.trimmed.Inc()
	m.size.Set(float64(size))
}

// recordEmit adds delivered items and updates the size gauge.
func (m *operatorMetrics) recordEmit(n int64, size int) {
	m.emitted.Add(float64(n))
	m.size.Set(float64(size))
}

// recordClear zeroes the size gauge.
func (m *operatorMetrics) recordClear() {
	m.size.Set(0)
}
