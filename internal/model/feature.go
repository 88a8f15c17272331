package model

import "github.com/shopspring/decimal"

// Ratio is a ratio feature that is undefined when its denominator was zero.
// An undefined ratio contributes nothing to scoring and never satisfies a
// factor predicate.
type Ratio struct {
	Value   decimal.Decimal
	Defined bool
}

// DefinedRatio wraps a computed ratio value.
func DefinedRatio(v decimal.Decimal) Ratio {
	return Ratio{Value: v, Defined: true}
}

// UndefinedRatio is the zero-denominator case.
func UndefinedRatio() Ratio {
	return Ratio{}
}

// Exceeds reports whether the ratio is defined and strictly greater than
// threshold.
func (r Ratio) Exceeds(threshold decimal.Decimal) bool {
	return r.Defined && r.Value.GreaterThan(threshold)
}

// FeatureVector is the fixed set of named features extracted from a
// TaxDataRecord. Extraction is total: every valid record maps to a vector,
// with zero denominators surfacing as undefined ratios rather than errors.
type FeatureVector struct {
	TotalIncome                decimal.Decimal
	IncomeSourceCount          int
	DeductionRatio             Ratio
	ItemizedDeductionCount     int
	BusinessExpenseRatio       Ratio
	InvestmentIncome           decimal.Decimal
	CapitalGains               decimal.Decimal
	InvestmentTransactionCount int
	HomeOfficeDeduction        decimal.Decimal
	VehicleExpenses            decimal.Decimal
	MealEntertainmentExpenses  decimal.Decimal
	CharitableRatio            Ratio
	IncomeVolatility           Ratio
}
