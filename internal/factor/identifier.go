// Package factor identifies audit risk factors from extracted features.
package factor

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
	"github.com/oakmere/auditflow/internal/scoring"
	"github.com/oakmere/auditflow/internal/service"
)

// predicate reports whether one factor fires. Predicates over undefined
// ratios are false; thresholds come from the model definition.
type predicate func(v model.FeatureVector, level model.RiskLevel, threshold decimal.Decimal) bool

var predicates = map[string]predicate{
	"high_income": func(v model.FeatureVector, _ model.RiskLevel, t decimal.Decimal) bool {
		return v.TotalIncome.GreaterThan(t)
	},
	"multiple_income_sources": func(v model.FeatureVector, _ model.RiskLevel, t decimal.Decimal) bool {
		return decimal.NewFromInt(int64(v.IncomeSourceCount)).GreaterThanOrEqual(t)
	},
	"high_deduction_ratio": func(v model.FeatureVector, _ model.RiskLevel, t decimal.Decimal) bool {
		return v.DeductionRatio.Exceeds(t)
	},
	"high_business_expense_ratio": func(v model.FeatureVector, _ model.RiskLevel, t decimal.Decimal) bool {
		return v.BusinessExpenseRatio.Exceeds(t)
	},
	"large_home_office_deduction": func(v model.FeatureVector, _ model.RiskLevel, t decimal.Decimal) bool {
		return v.HomeOfficeDeduction.GreaterThan(t)
	},
	"high_vehicle_expenses": func(v model.FeatureVector, _ model.RiskLevel, t decimal.Decimal) bool {
		return v.VehicleExpenses.GreaterThan(t)
	},
	"high_meal_entertainment": func(v model.FeatureVector, _ model.RiskLevel, t decimal.Decimal) bool {
		return v.MealEntertainmentExpenses.GreaterThan(t)
	},
	"excessive_charitable_contributions": func(v model.FeatureVector, _ model.RiskLevel, t decimal.Decimal) bool {
		return v.CharitableRatio.Exceeds(t)
	},
	"frequent_investment_activity": func(v model.FeatureVector, _ model.RiskLevel, t decimal.Decimal) bool {
		return decimal.NewFromInt(int64(v.InvestmentTransactionCount)).GreaterThanOrEqual(t)
	},
	"income_volatility": func(v model.FeatureVector, _ model.RiskLevel, t decimal.Decimal) bool {
		return v.IncomeVolatility.Exceeds(t)
	},
	"elevated_overall_risk": func(_ model.FeatureVector, level model.RiskLevel, _ decimal.Decimal) bool {
		return level == model.RiskLevelHigh
	},
}

// Identifier evaluates the configured factor definitions against feature
// vectors and attaches whatever citations the reference cache can back.
type Identifier struct {
	refs    service.ReferenceReader
	factors []scoring.FactorConfig
}

// NewIdentifier binds factor definitions to their predicates. A definition
// whose code has no predicate is a configuration error. The reference
// reader may be nil; factors then carry no citations.
func NewIdentifier(factors []scoring.FactorConfig, refs service.ReferenceReader) (*Identifier, error) {
	if len(factors) == 0 {
		return nil, fmt.Errorf("%w: no factor definitions", common.ErrInvalidConfig)
	}
	for _, f := range factors {
		if _, ok := predicates[f.Code]; !ok {
			return nil, fmt.Errorf("%w: no predicate for factor code %q", common.ErrInvalidConfig, f.Code)
		}
	}
	return &Identifier{factors: factors, refs: refs}, nil
}

// Identify returns the factors firing for the vector, ordered severity
// descending with ties broken by code ascending. Each definition fires at
// most once, so codes are unique; a duplicate is reported as an invariant
// violation rather than returned.
func (i *Identifier) Identify(v model.FeatureVector, level model.RiskLevel) (model.RiskFactors, error) {
	out := make(model.RiskFactors, 0, len(i.factors))
	for _, def := range i.factors {
		if !predicates[def.Code](v, level, def.Threshold) {
			continue
		}
		out = append(out, model.RiskFactor{
			Code:          def.Code,
			Description:   def.Description,
			Severity:      def.Severity,
			CitedSections: i.citations(def),
		})
	}

	if code, dup := out.DuplicateCode(); dup {
		return nil, common.Invariantf("duplicate risk factor code %q", code)
	}
	out.Sort()
	return out, nil
}

// citations resolves a definition's references against the cache. Only
// material the cache currently holds is cited, fresh or stale; a cold
// cache degrades to no citations, never an error or a fetch.
func (i *Identifier) citations(def scoring.FactorConfig) []string {
	if i.refs == nil || len(def.Cites) == 0 {
		return nil
	}
	var cited []string
	for _, c := range def.Cites {
		if _, ok := i.refs.Get(c.Kind, c.ID); ok {
			cited = append(cited, fmt.Sprintf("%s %s", c.Kind, c.ID))
		}
	}
	return cited
}
