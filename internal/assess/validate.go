// Package assess orchestrates the full audit risk assessment pipeline:
// validation, feature extraction, scoring, factor identification, and
// recommendation generation.
package assess

import (
	"github.com/shopspring/decimal"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
)

// Validate checks a record at the trust boundary. The first violation
// wins and names the offending field using its wire name. Valid records
// pass through untouched; validation never mutates.
func Validate(record model.TaxDataRecord) error {
	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"total_income", record.TotalIncome},
		{"total_deductions", record.TotalDeductions},
		{"business_income", record.BusinessIncome},
		{"business_expenses", record.BusinessExpenses},
		{"investment_income", record.InvestmentIncome},
		{"capital_gains", record.CapitalGains},
		{"home_office_deduction", record.HomeOfficeDeduction},
		{"vehicle_expenses", record.VehicleExpenses},
		{"meal_entertainment_expenses", record.MealEntertainmentExpenses},
		{"charitable_contributions", record.CharitableContributions},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return common.NewValidationError(a.name, "must not be negative")
		}
	}

	tagLists := []struct {
		name  string
		tags  []string
		known map[string]bool
	}{
		{"income_sources", record.IncomeSources, model.KnownIncomeSources},
		{"itemized_deductions", record.ItemizedDeductions, model.KnownItemizedDeductions},
		{"investment_transactions", record.InvestmentTransactions, model.KnownInvestmentTransactions},
	}
	for _, list := range tagLists {
		for _, tag := range list.tags {
			if !list.known[model.CanonicalTag(tag)] {
				return common.NewValidationError(list.name, "unknown tag "+tag)
			}
		}
	}

	for _, v := range record.IncomeHistory {
		if v.IsNegative() {
			return common.NewValidationError("income_history", "entries must not be negative")
		}
	}

	return nil
}
