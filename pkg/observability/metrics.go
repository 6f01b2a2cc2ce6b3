// Package observability exposes Prometheus instrumentation for the
// transform engine.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's collectors. Register once per process and
// share across executors; a nil *Metrics is a safe no-op.
type Metrics struct {
	TransformsTotal  *prometheus.CounterVec
	ActionsTotal     *prometheus.CounterVec
	CoercionWarnings prometheus.Counter
	Duration         prometheus.Histogram
}

// New creates and registers the engine collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TransformsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crosswalk_transforms_total",
				Help: "Transforms executed, by outcome (completed, failed).",
			},
			[]string{"outcome"},
		),
		ActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crosswalk_actions_applied_total",
				Help: "Actions applied, by action kind.",
			},
			[]string{"action"},
		),
		CoercionWarnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "crosswalk_coercion_warnings_total",
				Help: "Recoverable per-cell coercion problems recorded.",
			},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crosswalk_transform_duration_seconds",
				Help:    "Wall time of complete transform executions.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.TransformsTotal, m.ActionsTotal, m.CoercionWarnings, m.Duration)
	return m
}

// ObserveTransform records one finished transform.
func (m *Metrics) ObserveTransform(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TransformsTotal.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
}

// ObserveAction records one applied action.
func (m *Metrics) ObserveAction(kind string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(kind).Inc()
}

// ObserveWarnings records recoverable coercion warnings.
func (m *Metrics) ObserveWarnings(n int) {
	if m == nil || n == 0 {
		return
	}
	m.CoercionWarnings.Add(float64(n))
}
