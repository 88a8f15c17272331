package refdata

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reference data cache. A nil
// Metrics is valid and records nothing, which keeps tests quiet.
type Metrics struct {
	// Lookup outcomes: hit, miss, stale
	Lookups *prometheus.CounterVec

	// Refresh outcomes by result
	Refreshes *prometheus.CounterVec

	// Upstream fetch latency
	RefreshLatency prometheus.Histogram
}

// NewMetrics creates a Metrics instance registered on the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auditflow_reference_lookups_total",
			Help: "Reference cache lookups by outcome",
		}, []string{"outcome"}), // outcome: "hit", "miss", "stale"

		Refreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "auditflow_reference_refreshes_total",
			Help: "Reference cache refreshes by result",
		}, []string{"result"}), // result: "success", "failure"

		RefreshLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditflow_reference_refresh_duration_seconds",
			Help:    "Duration of upstream reference fetches",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementLookup records one cache lookup outcome.
func (m *Metrics) IncrementLookup(outcome string) {
	if m != nil {
		m.Lookups.WithLabelValues(outcome).Inc()
	}
}

// IncrementRefresh records one refresh result.
func (m *Metrics) IncrementRefresh(result string) {
	if m != nil {
		m.Refreshes.WithLabelValues(result).Inc()
	}
}

// ObserveRefreshLatency records the duration of one upstream fetch.
func (m *Metrics) ObserveRefreshLatency(d time.Duration) {
	if m != nil {
		m.RefreshLatency.Observe(d.Seconds())
	}
}
