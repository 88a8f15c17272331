package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssessmentRecord wraps an AssessmentResult with storage identity for the
// assessment history. The identity fields vary per call; determinism
// guarantees apply to the embedded result only.
type AssessmentRecord struct {
	ID          string           `json:"id"`
	AssessedAt  time.Time        `json:"assessed_at"`
	TotalIncome decimal.Decimal  `json:"total_income"`
	Result      AssessmentResult `json:"result"`
}
