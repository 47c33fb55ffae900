package workspace

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the resolver's Prometheus metrics.
type Metrics struct {
	ResolutionsTotal   *prometheus.CounterVec
	DenialsTotal       *prometheus.CounterVec
	ValidationDuration prometheus.Histogram
	SupersededTotal    prometheus.Counter
}

// NewMetrics creates and registers the resolver metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wayfinder_resolutions_total",
				Help: "Navigation resolutions by outcome and target context",
			},
			[]string{"outcome", "context"},
		),
		DenialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wayfinder_denials_total",
				Help: "Denied navigations by reason",
			},
			[]string{"reason"},
		),
		ValidationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wayfinder_org_validation_duration_seconds",
				Help:    "Duration of org access validation calls",
				Buckets: prometheus.DefBuckets,
			},
		),
		SupersededTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wayfinder_superseded_resolutions_total",
				Help: "Resolutions discarded because a newer navigation won",
			},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.ResolutionsTotal,
			m.DenialsTotal,
			m.ValidationDuration,
			m.SupersededTotal,
		)
	}
	return m
}

func (m *Metrics) resolution(outcome, context string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(outcome, context).Inc()
}

func (m *Metrics) denial(reason DenialReason) {
	if m == nil {
		return
	}
	m.DenialsTotal.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) superseded() {
	if m == nil {
		return
	}
	m.SupersededTotal.Inc()
}

func (m *Metrics) validationSeconds(s float64) {
	if m == nil {
		return
	}
	m.ValidationDuration.Observe(s)
}
