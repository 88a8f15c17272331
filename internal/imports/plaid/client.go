// Package plaid builds draft tax data records from Plaid transaction
// data. Like the OFX importer, the output is a reviewable draft: income
// aggregates from credits, and debits land in expense buckets when their
// categories or descriptions match.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
	"github.com/oakmere/auditflow/internal/service"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("plaid client ID is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("plaid secret is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("plaid access token is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("plaid environment is required")
	}

	validEnvs := map[string]bool{
		"sandbox":    true,
		"production": true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid Plaid environment: must be sandbox or production")
	}

	return nil
}

// Client fetches transactions from the Plaid API.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   *service.RetryOptions
	accessToken string
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: &service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// Summary reports what the importer did with the fetched transactions.
type Summary struct {
	Accounts     []string
	Transactions int
	Credits      int
	Debits       int
	Bucketed     int
	Skipped      int
}

// BuildRecord fetches transactions for the date range and aggregates
// them into a draft TaxDataRecord.
func (c *Client) BuildRecord(ctx context.Context, startDate, endDate time.Time) (*model.TaxDataRecord, *Summary, error) {
	if startDate.After(endDate) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}

	transactions, err := c.fetchTransactions(ctx, startDate, endDate)
	if err != nil {
		return nil, nil, err
	}

	agg := newAggregator()
	for _, tx := range transactions {
		agg.add(tx)
	}

	record, summary := agg.finish()
	c.logger.Info("Built draft record from Plaid transactions",
		"transactions", summary.Transactions,
		"credits", summary.Credits,
		"debits", summary.Debits,
		"bucketed", summary.Bucketed)

	return record, summary, nil
}

// fetchTransactions pages through the full date range. Rate limit
// responses retry with backoff; other API errors abort.
func (c *Client) fetchTransactions(ctx context.Context, startDate, endDate time.Time) ([]plaid.Transaction, error) {
	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format("2006-01-02"),
		"end_date", endDate.Format("2006-01-02"))

	var allTransactions []plaid.Transaction
	offset := int32(0)
	const pageSize = int32(500) // Plaid's max page size

	for {
		var page []plaid.Transaction

		retryErr := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				startDate.Format("2006-01-02"),
				endDate.Format("2006-01-02"),
			)
			options := plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			}
			request.SetOptions(options)

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				if plaidError := extractPlaidError(err); plaidError != nil {
					if plaidError.ErrorCode == "RATE_LIMIT_EXCEEDED" {
						c.logger.Warn("Rate limit hit, will retry", "error", plaidError.ErrorMessage)
						return &common.RetryableError{Err: err, Retryable: true}
					}
					return fmt.Errorf("plaid API error: %s - %s", plaidError.ErrorCode, plaidError.ErrorMessage)
				}
				return fmt.Errorf("failed to fetch transactions: %w", err)
			}

			page = resp.GetTransactions()

			c.logger.Debug("Fetched transaction batch",
				"count", len(page),
				"offset", offset,
				"total", resp.GetTotalTransactions())

			return nil
		}, *c.retryOpts)

		if retryErr != nil {
			return nil, retryErr
		}

		allTransactions = append(allTransactions, page...)

		if len(page) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	c.logger.Info("Fetched all transactions", "count", len(allTransactions))
	return allTransactions, nil
}

// GetAccounts fetches account IDs from Plaid.
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	c.logger.Info("Fetching accounts from Plaid")

	var accounts []plaid.AccountBase
	retryErr := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			if plaidError := extractPlaidError(err); plaidError != nil {
				if plaidError.ErrorCode == "RATE_LIMIT_EXCEEDED" {
					c.logger.Warn("Rate limit hit, will retry", "error", plaidError.ErrorMessage)
					return &common.RetryableError{Err: err, Retryable: true}
				}
				return fmt.Errorf("plaid API error: %s - %s", plaidError.ErrorCode, plaidError.ErrorMessage)
			}
			return fmt.Errorf("failed to fetch accounts: %w", err)
		}

		accounts = resp.GetAccounts()
		return nil
	}, *c.retryOpts)

	if retryErr != nil {
		return nil, retryErr
	}

	accountIDs := make([]string, 0, len(accounts))
	for _, account := range accounts {
		accountIDs = append(accountIDs, account.GetAccountId())
	}

	return accountIDs, nil
}

// aggregator accumulates classified transaction amounts until the draft
// record is assembled.
type aggregator struct {
	totalIncome      decimal.Decimal
	investmentIncome decimal.Decimal
	vehicle          decimal.Decimal
	meals            decimal.Decimal
	charitable       decimal.Decimal

	incomeSources  map[string]bool
	investmentTags map[string]bool
	itemized       map[string]bool
	accounts       map[string]bool

	summary Summary
}

func newAggregator() *aggregator {
	return &aggregator{
		incomeSources:  make(map[string]bool),
		investmentTags: make(map[string]bool),
		itemized:       make(map[string]bool),
		accounts:       make(map[string]bool),
	}
}

// add classifies one transaction. Plaid amounts are signed the opposite
// way from OFX: positive is money out, negative is money in.
func (a *aggregator) add(tx plaid.Transaction) {
	a.summary.Transactions++
	if id := tx.GetAccountId(); id != "" {
		a.accounts[id] = true
	}

	amount := decimal.NewFromFloat(tx.GetAmount()).Round(2)
	label := classifyLabel(tx)

	if amount.IsNegative() {
		a.summary.Credits++
		a.addCredit(label, amount.Abs())
		return
	}
	if amount.IsZero() {
		a.summary.Skipped++
		return
	}

	a.summary.Debits++
	a.addDebit(label, amount)
}

func (a *aggregator) addCredit(label string, amount decimal.Decimal) {
	a.totalIncome = a.totalIncome.Add(amount)

	switch {
	case strings.Contains(label, "INTEREST"):
		a.investmentIncome = a.investmentIncome.Add(amount)
		a.investmentTags["interest"] = true
		a.incomeSources["investment"] = true
	case strings.Contains(label, "DIVIDEND"):
		a.investmentIncome = a.investmentIncome.Add(amount)
		a.investmentTags["dividend"] = true
		a.incomeSources["investment"] = true
	case strings.Contains(label, "PAYROLL"):
		a.incomeSources["w2"] = true
	default:
		a.incomeSources["other"] = true
	}
}

func (a *aggregator) addDebit(label string, amount decimal.Decimal) {
	switch {
	case containsAny(label, "GAS STATION", "GAS", "FUEL", "AUTOMOTIVE", "PARKING", "TOLL"):
		a.vehicle = a.vehicle.Add(amount)
		a.summary.Bucketed++
	case containsAny(label, "RESTAURANT", "FOOD AND DRINK", "COFFEE", "FAST FOOD", "BAR"):
		a.meals = a.meals.Add(amount)
		a.summary.Bucketed++
	case containsAny(label, "CHARIT", "DONATION", "RELIGIOUS", "NON-PROFIT"):
		a.charitable = a.charitable.Add(amount)
		a.itemized["charity"] = true
		a.summary.Bucketed++
	default:
		a.summary.Skipped++
	}
}

func (a *aggregator) finish() (*model.TaxDataRecord, *Summary) {
	record := &model.TaxDataRecord{
		TotalIncome:               a.totalIncome,
		IncomeSources:             sortedKeys(a.incomeSources),
		InvestmentIncome:          a.investmentIncome,
		InvestmentTransactions:    sortedKeys(a.investmentTags),
		ItemizedDeductions:        sortedKeys(a.itemized),
		VehicleExpenses:           a.vehicle,
		MealEntertainmentExpenses: a.meals,
		CharitableContributions:   a.charitable,
	}

	a.summary.Accounts = sortedKeys(a.accounts)
	return record, &a.summary
}

// classifyLabel joins the category hierarchy and names Plaid provides
// into one uppercase string for pattern matching.
func classifyLabel(tx plaid.Transaction) string {
	parts := tx.GetCategory()
	parts = append(parts, tx.GetMerchantName(), tx.GetName())
	return strings.ToUpper(strings.Join(parts, " "))
}

func containsAny(s string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// extractPlaidError attempts to extract a Plaid error from a generic error.
func extractPlaidError(err error) *plaid.PlaidError {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return nil
	}
	return &plaidErr
}
