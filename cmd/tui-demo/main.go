// Package main provides a demo program for the history TUI. It seeds an
// in-memory store through the real assessment pipeline so the browser
// can be exercised without a database on disk.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/oakmere/auditflow/internal/assess"
	"github.com/oakmere/auditflow/internal/model"
	"github.com/oakmere/auditflow/internal/scoring"
	"github.com/oakmere/auditflow/internal/storage"
	"github.com/oakmere/auditflow/internal/tui"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error running TUI demo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	riskModel, err := scoring.DefaultModel()
	if err != nil {
		return err
	}
	svc, err := assess.New(riskModel, nil, assess.WithStorage(store))
	if err != nil {
		return err
	}

	for _, record := range sampleRecords() {
		if _, err := svc.Analyze(ctx, record); err != nil {
			return err
		}
	}

	return tui.Run(ctx, svc, 50)
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// sampleRecords spans the three risk bands so every severity style shows
// up in the browser.
func sampleRecords() []model.TaxDataRecord {
	return []model.TaxDataRecord{
		{
			TotalIncome:     dec(85000),
			IncomeSources:   []string{"w2"},
			TotalDeductions: dec(12000),
		},
		{
			TotalIncome:               dec(100000),
			IncomeSources:             []string{"w2", "1099"},
			TotalDeductions:           dec(20000),
			ItemizedDeductions:        []string{"mortgage", "charity"},
			BusinessIncome:            dec(50000),
			BusinessExpenses:          dec(20000),
			InvestmentIncome:          dec(5000),
			CapitalGains:              dec(2000),
			InvestmentTransactions:    []string{"stock_sale", "dividend"},
			HomeOfficeDeduction:       dec(5000),
			VehicleExpenses:           dec(3000),
			MealEntertainmentExpenses: dec(2000),
			CharitableContributions:   dec(5000),
		},
		{
			TotalIncome:               dec(260000),
			IncomeSources:             []string{"self_employment", "business", "investment"},
			TotalDeductions:           dec(150000),
			ItemizedDeductions:        []string{"mortgage", "charity", "state_local_tax"},
			BusinessIncome:            dec(120000),
			BusinessExpenses:          dec(110000),
			InvestmentIncome:          dec(30000),
			CapitalGains:              dec(12000),
			InvestmentTransactions:    []string{"stock_sale", "option_trade", "crypto_sale", "dividend"},
			HomeOfficeDeduction:       dec(18000),
			VehicleExpenses:           dec(15000),
			MealEntertainmentExpenses: dec(9000),
			CharitableContributions:   dec(45000),
			IncomeHistory:             []decimal.Decimal{dec(90000), dec(210000), dec(260000)},
		},
	}
}
