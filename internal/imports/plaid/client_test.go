package plaid

import (
	"context"
	"testing"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		config  Config
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: false,
		},
		{
			name: "missing client ID",
			config: Config{
				Secret:      "test-secret",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid client ID is required",
		},
		{
			name: "missing secret",
			config: Config{
				ClientID:    "test-client-id",
				Environment: "sandbox",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid secret is required",
		},
		{
			name: "missing access token",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "sandbox",
			},
			wantErr: true,
			errMsg:  "plaid access token is required",
		},
		{
			name: "missing environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "plaid environment is required",
		},
		{
			name: "invalid environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "development",
				AccessToken: "test-token",
			},
			wantErr: true,
			errMsg:  "invalid Plaid environment",
		},
		{
			name: "valid production environment",
			config: Config{
				ClientID:    "test-client-id",
				Secret:      "test-secret",
				Environment: "production",
				AccessToken: "test-token",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewClient(t *testing.T) {
	t.Run("valid config creates client", func(t *testing.T) {
		client, err := NewClient(Config{
			ClientID:    "test-client-id",
			Secret:      "test-secret",
			Environment: "sandbox",
			AccessToken: "test-token",
		})
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.NotNil(t, client.client)
		assert.Equal(t, "test-token", client.accessToken)
		assert.NotNil(t, client.logger)
		assert.NotNil(t, client.retryOpts)
	})

	t.Run("invalid config returns error", func(t *testing.T) {
		client, err := NewClient(Config{ClientID: "test-client-id"})
		require.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestClient_BuildRecord_Validation(t *testing.T) {
	client, err := NewClient(Config{
		ClientID:    "test-client-id",
		Secret:      "test-secret",
		Environment: "sandbox",
		AccessToken: "test-token",
	})
	require.NoError(t, err)

	// Date validation happens before any API call.
	_, _, err = client.BuildRecord(context.Background(), time.Now(), time.Now().AddDate(0, -1, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start date must be before end date")
}

func TestAggregatorCredits(t *testing.T) {
	agg := newAggregator()

	agg.addCredit("TRANSFER PAYROLL ACME CORP DIRECT DEP", decimal.RequireFromString("5000"))
	agg.addCredit("INTEREST EARNED", decimal.RequireFromString("12.34"))
	agg.addCredit("DIVIDEND VANGUARD", decimal.RequireFromString("45"))
	agg.addCredit("VENMO CASHOUT", decimal.RequireFromString("20"))

	record, _ := agg.finish()
	assert.True(t, record.TotalIncome.Equal(decimal.RequireFromString("5077.34")),
		"total income %s", record.TotalIncome)
	assert.True(t, record.InvestmentIncome.Equal(decimal.RequireFromString("57.34")))
	assert.Equal(t, []string{"investment", "other", "w2"}, record.IncomeSources)
	assert.Equal(t, []string{"dividend", "interest"}, record.InvestmentTransactions)
}

func TestAggregatorDebits(t *testing.T) {
	agg := newAggregator()

	agg.addDebit("TRAVEL GAS STATION SHELL", decimal.RequireFromString("40"))
	agg.addDebit("FOOD AND DRINK RESTAURANTS STARBUCKS", decimal.RequireFromString("25.50"))
	agg.addDebit("COMMUNITY RELIGIOUS FIRST CHURCH", decimal.RequireFromString("100"))
	agg.addDebit("SHOPS SUPERMARKETS WHOLE FOODS", decimal.RequireFromString("60"))

	record, summary := agg.finish()
	assert.True(t, record.VehicleExpenses.Equal(decimal.RequireFromString("40")))
	assert.True(t, record.MealEntertainmentExpenses.Equal(decimal.RequireFromString("25.50")))
	assert.True(t, record.CharitableContributions.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, []string{"charity"}, record.ItemizedDeductions)
	assert.Equal(t, 3, summary.Bucketed)
	assert.Equal(t, 1, summary.Skipped)
}

func TestAggregatorAdd(t *testing.T) {
	agg := newAggregator()

	// Plaid signs amounts with positive as money out.
	var deposit plaid.Transaction
	deposit.SetAccountId("acc-1")
	deposit.SetAmount(-2500.00)
	deposit.SetName("ACME CORP PAYROLL")
	agg.add(deposit)

	var purchase plaid.Transaction
	purchase.SetAccountId("acc-1")
	purchase.SetAmount(42.17)
	purchase.SetName("SHELL GAS 57444")
	agg.add(purchase)

	var zero plaid.Transaction
	zero.SetAccountId("acc-2")
	zero.SetAmount(0)
	zero.SetName("AUTH HOLD")
	agg.add(zero)

	record, summary := agg.finish()
	assert.Equal(t, 3, summary.Transactions)
	assert.Equal(t, 1, summary.Credits)
	assert.Equal(t, 1, summary.Debits)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, []string{"acc-1", "acc-2"}, summary.Accounts)
	assert.True(t, record.TotalIncome.Equal(decimal.RequireFromString("2500")))
	assert.True(t, record.VehicleExpenses.Equal(decimal.RequireFromString("42.17")))
	assert.Equal(t, []string{"w2"}, record.IncomeSources)
}

func TestClassifyLabel(t *testing.T) {
	var tx plaid.Transaction
	tx.SetCategory([]string{"Food and Drink", "Restaurants"})
	tx.SetMerchantName("Starbucks")
	tx.SetName("STARBUCKS STORE 1234")

	assert.Equal(t, "FOOD AND DRINK RESTAURANTS STARBUCKS STARBUCKS STORE 1234", classifyLabel(tx))

	var bare plaid.Transaction
	bare.SetName("transfer")
	assert.Equal(t, " TRANSFER", classifyLabel(bare))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("TRAVEL GAS STATION", "GAS", "FUEL"))
	assert.False(t, containsAny("SHOPS SUPERMARKETS", "GAS", "FUEL"))
	assert.False(t, containsAny("", "GAS"))
}
