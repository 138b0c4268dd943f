package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records quote calculation outcomes.
type EngineMetrics struct {
	duration       *prometheus.HistogramVec
	success        *prometheus.CounterVec
	failure        *prometheus.CounterVec
	formulaFailure *prometheus.CounterVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_calculation_duration_seconds",
		Help:    "Duration of quote calculations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_calculation_success",
		Help: "Successful quote calculations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_calculation_failure",
		Help: "Failed quote calculations.",
	}, []string{"operation"})
	formulaFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rebate_formula_failure",
		Help: "Rebate formula evaluations that produced no amount.",
	}, []string{"definition"})
	reg.MustRegister(duration, success, failure, formulaFailure)
	return &EngineMetrics{
		duration:       duration,
		success:        success,
		failure:        failure,
		formulaFailure: formulaFailure,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *EngineMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *EngineMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *EngineMetrics) IncFailure(operation string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFormulaFailure increments the formula failure counter for a definition.
func (m *EngineMetrics) IncFormulaFailure(definition string) {
	if m == nil || m.formulaFailure == nil {
		return
	}
	m.formulaFailure.WithLabelValues(normalizeLabel(definition)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
