package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts backend calls by operation and outcome.
type Metrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetrics registers the client metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fittrack",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Backend calls by operation and result status (ok, degraded, failed).",
		}, []string{"op", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fittrack",
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Time spent on a backend call, fallbacks included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(m.calls, m.latency)
	return m
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func (m *Metrics) observe(op string, status Status, start time.Time) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op, status.String()).Inc()
	m.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
