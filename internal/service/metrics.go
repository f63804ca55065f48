package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records recommendation outcomes
type Metrics struct {
	recommendations *prometheus.CounterVec
	overrides       *prometheus.CounterVec
	guardsFired     *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// NewMetrics registers the recommender metrics on reg. Collectors already
// registered on reg by an earlier call are reused, so several services may
// share one registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		recommendations: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommender_recommendations_total",
				Help: "Final recommendations by variant and direction",
			},
			[]string{"variant", "direction"},
		)),
		overrides: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommender_overrides_total",
				Help: "Recommendations whose direction was changed by a guard",
			},
			[]string{"variant"},
		)),
		guardsFired: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommender_guards_fired_total",
				Help: "Guard firings by guard name",
			},
			[]string{"guard"},
		)),
		errorsTotal: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommender_errors_total",
				Help: "Errors by pipeline stage",
			},
			[]string{"stage"},
		)),
		latency: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recommender_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		)),
	}
}

// register adds c to reg, or returns the collector already registered under
// the same descriptor
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// RecordError records a failure in stage
func (m *Metrics) RecordError(stage string) {
	m.errorsTotal.WithLabelValues(stage).Inc()
}

// RecordLatency records how long stage took
func (m *Metrics) RecordLatency(stage string, seconds float64) {
	m.latency.WithLabelValues(stage).Observe(seconds)
}

func (m *Metrics) recordRecommendation(variant, direction, original string, fired []string) {
	m.recommendations.WithLabelValues(variant, direction).Inc()
	if original != direction {
		m.overrides.WithLabelValues(variant).Inc()
	}
	for _, g := range fired {
		m.guardsFired.WithLabelValues(g).Inc()
	}
}
