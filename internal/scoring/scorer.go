package scoring

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
)

// scorePrecision fixes division precision so identical vectors always
// produce identical digits.
const scorePrecision = 16

// termValue extracts one term's raw value from a vector. The second return
// is false when the feature is undefined for the record; the term then
// contributes nothing and its weight leaves the denominator.
type termValue func(model.FeatureVector) (decimal.Decimal, bool)

var termRegistry = map[string]termValue{
	"income_level": func(v model.FeatureVector) (decimal.Decimal, bool) {
		return v.TotalIncome, true
	},
	"income_sources": func(v model.FeatureVector) (decimal.Decimal, bool) {
		return decimal.NewFromInt(int64(v.IncomeSourceCount - 1)), true
	},
	"deduction_ratio": func(v model.FeatureVector) (decimal.Decimal, bool) {
		return v.DeductionRatio.Value, v.DeductionRatio.Defined
	},
	"business_expense_ratio": func(v model.FeatureVector) (decimal.Decimal, bool) {
		return v.BusinessExpenseRatio.Value, v.BusinessExpenseRatio.Defined
	},
	"investment_activity": func(v model.FeatureVector) (decimal.Decimal, bool) {
		return decimal.NewFromInt(int64(v.InvestmentTransactionCount)), true
	},
	"home_office": func(v model.FeatureVector) (decimal.Decimal, bool) {
		return v.HomeOfficeDeduction, true
	},
	"vehicle_expenses": func(v model.FeatureVector) (decimal.Decimal, bool) {
		return v.VehicleExpenses, true
	},
	"meal_entertainment": func(v model.FeatureVector) (decimal.Decimal, bool) {
		return v.MealEntertainmentExpenses, true
	},
	"charitable_ratio": func(v model.FeatureVector) (decimal.Decimal, bool) {
		return v.CharitableRatio.Value, v.CharitableRatio.Defined
	},
	"income_volatility": func(v model.FeatureVector) (decimal.Decimal, bool) {
		return v.IncomeVolatility.Value, v.IncomeVolatility.Defined
	},
}

// termNames lists the registry in a stable order.
func termNames() []string {
	names := make([]string, 0, len(termRegistry))
	for name := range termRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scorer maps feature vectors onto [0,1] audit risk scores.
type Scorer struct {
	model *Model
}

// NewScorer builds a scorer over a validated model.
func NewScorer(m *Model) *Scorer {
	return &Scorer{model: m}
}

// Score computes the weighted risk score for a vector: each contributing
// term normalizes into [0,1] against its cap, and the weighted sum is
// renormalized over the contributing weights so undefined features raise
// no one else's share. The result is clamped to [0,1]. A vector with no
// contributing terms scores zero.
func (s *Scorer) Score(v model.FeatureVector) (decimal.Decimal, error) {
	var num, den decimal.Decimal

	for _, name := range termNames() {
		tc, ok := s.model.Terms[name]
		if !ok {
			return decimal.Decimal{}, common.Invariantf("scoring term %q missing from model", name)
		}
		raw, contributing := termRegistry[name](v)
		if !contributing {
			continue
		}
		num = num.Add(tc.Weight.Mul(normalize(raw, tc.Cap)))
		den = den.Add(tc.Weight)
	}

	if den.IsZero() {
		return decimal.Decimal{}, nil
	}
	return clampUnit(num.DivRound(den, scorePrecision)), nil
}

// LevelFor places a score into its band. A boundary score lands in the
// higher band: exactly medium_from is Medium, exactly high_from is High.
func (s *Scorer) LevelFor(score decimal.Decimal) model.RiskLevel {
	switch {
	case score.LessThan(s.model.Levels.MediumFrom):
		return model.RiskLevelLow
	case score.LessThan(s.model.Levels.HighFrom):
		return model.RiskLevelMedium
	default:
		return model.RiskLevelHigh
	}
}

// Model exposes the validated model backing this scorer.
func (s *Scorer) Model() *Model {
	return s.model
}

// normalize maps a raw value onto [0,1] as value / limit, clamped.
func normalize(raw, limit decimal.Decimal) decimal.Decimal {
	return clampUnit(raw.DivRound(limit, scorePrecision))
}

func clampUnit(d decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	switch {
	case d.IsNegative():
		return decimal.Decimal{}
	case d.GreaterThan(one):
		return one
	default:
		return d
	}
}
