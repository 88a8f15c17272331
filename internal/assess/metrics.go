package assess

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the assessment pipeline.
type Metrics struct {
	Assessments        *prometheus.CounterVec
	AssessmentLatency  prometheus.Histogram
	ValidationFailures *prometheus.CounterVec
}

// NewMetrics creates and registers assessment metrics with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Assessments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditflow_assessments_total",
				Help: "Total number of completed risk assessments by level",
			},
			[]string{"level"},
		),
		AssessmentLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "auditflow_assessment_duration_seconds",
				Help:    "Time taken to run a full risk assessment",
				Buckets: prometheus.DefBuckets,
			},
		),
		ValidationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditflow_validation_failures_total",
				Help: "Total number of rejected records by offending field",
			},
			[]string{"field"},
		),
	}
}

// IncrementAssessment increments the assessment counter for a risk level.
func (m *Metrics) IncrementAssessment(level string) {
	if m != nil && m.Assessments != nil {
		m.Assessments.WithLabelValues(level).Inc()
	}
}

// ObserveAssessmentLatency records the duration of an assessment.
func (m *Metrics) ObserveAssessmentLatency(d time.Duration) {
	if m != nil && m.AssessmentLatency != nil {
		m.AssessmentLatency.Observe(d.Seconds())
	}
}

// IncrementValidationFailure increments the validation failure counter for a field.
func (m *Metrics) IncrementValidationFailure(field string) {
	if m != nil && m.ValidationFailures != nil {
		m.ValidationFailures.WithLabelValues(field).Inc()
	}
}
