// Package feature turns tax data records into fixed-shape feature vectors
// for scoring and factor identification.
package feature

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/oakmere/auditflow/internal/model"
)

// ratioPrecision fixes division precision so identical inputs always
// produce identical digits.
const ratioPrecision = 16

// Extract computes the feature vector for a record. Extraction is pure and
// total: a zero denominator yields an undefined ratio, never an error, so
// an all-zero record still extracts cleanly.
func Extract(record model.TaxDataRecord) model.FeatureVector {
	return model.FeatureVector{
		TotalIncome:                record.TotalIncome,
		IncomeSourceCount:          len(record.IncomeSources),
		DeductionRatio:             ratio(record.TotalDeductions, record.TotalIncome),
		ItemizedDeductionCount:     len(record.ItemizedDeductions),
		BusinessExpenseRatio:       ratio(record.BusinessExpenses, record.BusinessIncome),
		InvestmentIncome:           record.InvestmentIncome,
		CapitalGains:               record.CapitalGains,
		InvestmentTransactionCount: len(record.InvestmentTransactions),
		HomeOfficeDeduction:        record.HomeOfficeDeduction,
		VehicleExpenses:            record.VehicleExpenses,
		MealEntertainmentExpenses:  record.MealEntertainmentExpenses,
		CharitableRatio:            ratio(record.CharitableContributions, record.TotalIncome),
		IncomeVolatility:           volatility(record.IncomeHistory),
	}
}

func ratio(numerator, denominator decimal.Decimal) model.Ratio {
	if denominator.IsZero() {
		return model.UndefinedRatio()
	}
	return model.DefinedRatio(numerator.DivRound(denominator, ratioPrecision))
}

// volatility is the population standard deviation of the income history
// divided by its mean. Undefined with fewer than two years of history or a
// zero mean. The square root goes through float64; everything else stays
// in decimal.
func volatility(history []decimal.Decimal) model.Ratio {
	if len(history) < 2 {
		return model.UndefinedRatio()
	}

	n := decimal.NewFromInt(int64(len(history)))
	sum := decimal.Decimal{}
	for _, v := range history {
		sum = sum.Add(v)
	}
	mean := sum.DivRound(n, ratioPrecision)
	if mean.IsZero() {
		return model.UndefinedRatio()
	}

	variance := decimal.Decimal{}
	for _, v := range history {
		d := v.Sub(mean)
		variance = variance.Add(d.Mul(d))
	}
	variance = variance.DivRound(n, ratioPrecision)

	stddev := decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))
	return model.DefinedRatio(stddev.DivRound(mean, ratioPrecision))
}
