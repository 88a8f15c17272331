package assess

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// exampleRecord is a plausible W-2-plus-side-business return used across
// the package tests.
func exampleRecord() model.TaxDataRecord {
	return model.TaxDataRecord{
		TotalIncome:               dec("100000"),
		IncomeSources:             []string{"w2", "1099"},
		TotalDeductions:           dec("20000"),
		ItemizedDeductions:        []string{"mortgage", "charity"},
		BusinessIncome:            dec("50000"),
		BusinessExpenses:          dec("20000"),
		InvestmentIncome:          dec("5000"),
		CapitalGains:              dec("2000"),
		InvestmentTransactions:    []string{"stock_sale", "dividend"},
		HomeOfficeDeduction:       dec("5000"),
		VehicleExpenses:           dec("3000"),
		MealEntertainmentExpenses: dec("2000"),
		CharitableContributions:   dec("5000"),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate     func(*model.TaxDataRecord)
		name       string
		wantField  string
		wantReason string
	}{
		{
			name:   "valid record",
			mutate: func(*model.TaxDataRecord) {},
		},
		{
			name:      "negative total income",
			mutate:    func(r *model.TaxDataRecord) { r.TotalIncome = dec("-1") },
			wantField: "total_income",
		},
		{
			name:      "negative deductions",
			mutate:    func(r *model.TaxDataRecord) { r.TotalDeductions = dec("-0.01") },
			wantField: "total_deductions",
		},
		{
			name:      "negative business expenses",
			mutate:    func(r *model.TaxDataRecord) { r.BusinessExpenses = dec("-500") },
			wantField: "business_expenses",
		},
		{
			name:      "negative home office deduction",
			mutate:    func(r *model.TaxDataRecord) { r.HomeOfficeDeduction = dec("-1") },
			wantField: "home_office_deduction",
		},
		{
			name:      "negative charitable contributions",
			mutate:    func(r *model.TaxDataRecord) { r.CharitableContributions = dec("-1") },
			wantField: "charitable_contributions",
		},
		{
			name:       "unknown income source",
			mutate:     func(r *model.TaxDataRecord) { r.IncomeSources = append(r.IncomeSources, "salary") },
			wantField:  "income_sources",
			wantReason: "unknown tag salary",
		},
		{
			name:      "unknown itemized deduction",
			mutate:    func(r *model.TaxDataRecord) { r.ItemizedDeductions = []string{"gambling"} },
			wantField: "itemized_deductions",
		},
		{
			name:      "unknown investment transaction",
			mutate:    func(r *model.TaxDataRecord) { r.InvestmentTransactions = []string{"forex"} },
			wantField: "investment_transactions",
		},
		{
			name:   "tags are matched case-insensitively",
			mutate: func(r *model.TaxDataRecord) { r.IncomeSources = []string{"W2", "Rental"} },
		},
		{
			name: "negative income history entry",
			mutate: func(r *model.TaxDataRecord) {
				r.IncomeHistory = []decimal.Decimal{dec("90000"), dec("-1")}
			},
			wantField: "income_history",
		},
		{
			name: "first violation wins",
			mutate: func(r *model.TaxDataRecord) {
				r.TotalIncome = dec("-1")
				r.IncomeSources = []string{"salary"}
			},
			wantField: "total_income",
		},
		{
			name:   "zero record is valid",
			mutate: func(r *model.TaxDataRecord) { *r = model.TaxDataRecord{} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := exampleRecord()
			tt.mutate(&record)

			err := Validate(record)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var vErr *common.ValidationError
			require.True(t, errors.As(err, &vErr), "expected a validation error, got %T", err)
			assert.Equal(t, tt.wantField, vErr.Field)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, vErr.Reason)
			}
		})
	}
}
