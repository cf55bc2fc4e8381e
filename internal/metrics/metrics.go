// Package metrics exposes Prometheus instrumentation for the twin engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for lifecycle, valuation and breeding
// operations. A nil *Metrics is valid and records nothing, so callers never
// have to guard instrumentation sites.
type Metrics struct {
	// Stage transitions by origin and destination stage
	StageTransitions *prometheus.CounterVec

	// Events processed by type
	EventsProcessed *prometheus.CounterVec

	// Full valuation recompute latency
	ValuationLatency prometheus.Histogram

	// Monte-Carlo breeding prediction latency
	BreedingLatency prometheus.Histogram

	// Rule violations raised at commit time, by rule and severity
	RuleViolations *prometheus.CounterVec
}

// New creates a Metrics instance with all engine metrics registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		StageTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "birdtwin_stage_transitions_total",
			Help: "Total lifecycle stage transitions by origin and destination",
		}, []string{"from", "to"}),

		EventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "birdtwin_events_processed_total",
			Help: "Total bird events absorbed into twins by event type",
		}, []string{"type"}),

		ValuationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "birdtwin_valuation_duration_seconds",
			Help:    "Duration of full valuation recomputes",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),

		BreedingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "birdtwin_breeding_prediction_duration_seconds",
			Help:    "Duration of Monte-Carlo offspring distribution runs",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),

		RuleViolations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "birdtwin_rule_violations_total",
			Help: "Total commit-time rule violations by rule name and severity",
		}, []string{"rule", "severity"}),
	}
}

// IncStageTransition records one lifecycle transition.
func (m *Metrics) IncStageTransition(from, to string) {
	if m != nil {
		m.StageTransitions.WithLabelValues(from, to).Inc()
	}
}

// IncEventProcessed records one absorbed event.
func (m *Metrics) IncEventProcessed(eventType string) {
	if m != nil {
		m.EventsProcessed.WithLabelValues(eventType).Inc()
	}
}

// ObserveValuationLatency records the duration of a full recompute.
func (m *Metrics) ObserveValuationLatency(d time.Duration) {
	if m != nil {
		m.ValuationLatency.Observe(d.Seconds())
	}
}

// ObserveBreedingLatency records the duration of a simulation run.
func (m *Metrics) ObserveBreedingLatency(d time.Duration) {
	if m != nil {
		m.BreedingLatency.Observe(d.Seconds())
	}
}

// IncRuleViolation records one rule violation.
func (m *Metrics) IncRuleViolation(rule, severity string) {
	if m != nil {
		m.RuleViolations.WithLabelValues(rule, severity).Inc()
	}
}
