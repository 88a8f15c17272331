// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TaxDataRecord is a single filer's tax data as submitted for assessment.
// All monetary fields are non-negative; list fields may be empty. The
// engine never mutates a record after validation.
type TaxDataRecord struct {
	TotalIncome               decimal.Decimal `json:"total_income"`
	IncomeSources             []string        `json:"income_sources"`
	TotalDeductions           decimal.Decimal `json:"total_deductions"`
	ItemizedDeductions        []string        `json:"itemized_deductions"`
	BusinessIncome            decimal.Decimal `json:"business_income"`
	BusinessExpenses          decimal.Decimal `json:"business_expenses"`
	InvestmentIncome          decimal.Decimal `json:"investment_income"`
	CapitalGains              decimal.Decimal `json:"capital_gains"`
	InvestmentTransactions    []string        `json:"investment_transactions"`
	HomeOfficeDeduction       decimal.Decimal `json:"home_office_deduction"`
	VehicleExpenses           decimal.Decimal `json:"vehicle_expenses"`
	MealEntertainmentExpenses decimal.Decimal `json:"meal_entertainment_expenses"`
	CharitableContributions   decimal.Decimal `json:"charitable_contributions"`

	// IncomeHistory holds prior-year total incomes, oldest first. Optional;
	// it feeds the income volatility feature when at least two years are
	// present.
	IncomeHistory []decimal.Decimal `json:"income_history,omitempty"`
}

// Known tag vocabularies for the record's list fields. Validation rejects
// anything outside these sets; comparison is case-insensitive.
var (
	KnownIncomeSources = tagSet(
		"w2", "1099", "self_employment", "business", "investment",
		"rental", "retirement", "royalty", "farm", "other",
	)
	KnownItemizedDeductions = tagSet(
		"mortgage", "charity", "medical", "state_local_tax",
		"casualty_loss", "education", "other",
	)
	KnownInvestmentTransactions = tagSet(
		"stock_sale", "bond_sale", "mutual_fund_sale", "option_trade",
		"crypto_sale", "dividend", "interest", "other",
	)
)

func tagSet(tags ...string) map[string]bool {
	s := make(map[string]bool, len(tags))
	for _, t := range tags {
		s[t] = true
	}
	return s
}

// CanonicalTag lowercases and trims a tag for vocabulary lookup.
func CanonicalTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Normalized returns a copy of the record with every tag list canonicalized
// and all slices freshly allocated, leaving the original untouched.
func (r TaxDataRecord) Normalized() TaxDataRecord {
	out := r
	out.IncomeSources = canonicalTags(r.IncomeSources)
	out.ItemizedDeductions = canonicalTags(r.ItemizedDeductions)
	out.InvestmentTransactions = canonicalTags(r.InvestmentTransactions)
	if r.IncomeHistory != nil {
		out.IncomeHistory = make([]decimal.Decimal, len(r.IncomeHistory))
		copy(out.IncomeHistory, r.IncomeHistory)
	}
	return out
}

func canonicalTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = CanonicalTag(t)
	}
	return out
}
