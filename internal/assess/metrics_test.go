package assess

import (
	"testing"
	"time"
)

func TestMetrics_NilSafe(t *testing.T) {
	// The pipeline runs without metrics in CLI mode; every recorder must
	// tolerate both a nil receiver and nil collectors.
	var m *Metrics
	m.IncrementAssessment("Low")
	m.ObserveAssessmentLatency(time.Millisecond)
	m.IncrementValidationFailure("total_income")

	empty := &Metrics{}
	empty.IncrementAssessment("High")
	empty.ObserveAssessmentLatency(time.Millisecond)
	empty.IncrementValidationFailure("total_income")
}
