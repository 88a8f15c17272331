package model

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Severity ranks how strongly a single risk factor weighs on a return.
type Severity string

const (
	// SeverityLow marks factors that merely merit attention.
	SeverityLow Severity = "Low"
	// SeverityMedium marks factors that commonly draw examiner scrutiny.
	SeverityMedium Severity = "Medium"
	// SeverityHigh marks factors strongly associated with audit selection.
	SeverityHigh Severity = "High"
)

// rank orders severities for sorting; higher is more severe.
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the three known severities.
func (s Severity) Valid() bool {
	return s.rank() > 0
}

// RiskLevel is the categorical band an overall score falls into.
type RiskLevel string

const (
	// RiskLevelLow covers scores in [0, 0.34).
	RiskLevelLow RiskLevel = "Low"
	// RiskLevelMedium covers scores in [0.34, 0.67).
	RiskLevelMedium RiskLevel = "Medium"
	// RiskLevelHigh covers scores in [0.67, 1].
	RiskLevelHigh RiskLevel = "High"
)

// ParseRiskLevel converts a stored string back into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return RiskLevel(s), nil
	default:
		return "", fmt.Errorf("unknown risk level %q", s)
	}
}

// RiskFactor is one identified audit trigger on a return.
type RiskFactor struct {
	Code          string   `json:"code"`
	Description   string   `json:"description"`
	Severity      Severity `json:"severity"`
	CitedSections []string `json:"cited_sections,omitempty"`
}

// RiskFactors is a slice of RiskFactor that supports the result ordering
// contract.
type RiskFactors []RiskFactor

// Len implements sort.Interface.
func (f RiskFactors) Len() int {
	return len(f)
}

// Less implements sort.Interface - higher severities come first, ties
// break on code so equal-severity orderings stay deterministic.
func (f RiskFactors) Less(i, j int) bool {
	if f[i].Severity != f[j].Severity {
		return f[i].Severity.rank() > f[j].Severity.rank()
	}
	return f[i].Code < f[j].Code
}

// Swap implements sort.Interface.
func (f RiskFactors) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
}

// Sort orders factors by severity descending, then code ascending.
func (f RiskFactors) Sort() {
	sort.Stable(f)
}

// DuplicateCode returns the first factor code appearing more than once.
// Codes must be unique within a result; a duplicate is an internal
// invariant violation, not user error.
func (f RiskFactors) DuplicateCode() (string, bool) {
	seen := make(map[string]bool, len(f))
	for _, factor := range f {
		if seen[factor.Code] {
			return factor.Code, true
		}
		seen[factor.Code] = true
	}
	return "", false
}

// Descriptions projects the factors onto their human-readable strings,
// preserving order.
func (f RiskFactors) Descriptions() []string {
	out := make([]string, len(f))
	for i, factor := range f {
		out[i] = factor.Description
	}
	return out
}

// AssessmentResult is the complete outcome of one risk assessment.
type AssessmentResult struct {
	Score           decimal.Decimal `json:"score"`
	Level           RiskLevel       `json:"level"`
	Factors         RiskFactors     `json:"factors"`
	Recommendations []string        `json:"recommendations"`
}
