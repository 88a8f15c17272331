// Package ofx builds draft tax data records from OFX/QFX bank exports.
// The draft is a starting point for review, not a filing: credits
// aggregate into income fields and debits land in expense buckets when
// their descriptions match known patterns.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/oakmere/auditflow/internal/model"
)

// Importer parses OFX/QFX files into draft tax data.
type Importer struct{}

// NewImporter creates a new OFX importer.
func NewImporter() *Importer {
	return &Importer{}
}

// Summary reports what the importer did with a file.
type Summary struct {
	Accounts     []string
	Transactions int
	Credits      int
	Debits       int
	Bucketed     int
	Skipped      int
}

// preprocessOFX fixes common formatting issues in OFX files.
func (im *Importer) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// BuildRecord parses an OFX/QFX file and aggregates its transactions
// into a draft TaxDataRecord.
func (im *Importer) BuildRecord(_ context.Context, reader io.Reader) (*model.TaxDataRecord, *Summary, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(im.preprocessOFX(string(content))))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	agg := newAggregator()

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			agg.addAccount(string(stmt.BankAcctFrom.AcctID))
			if stmt.BankTranList == nil {
				continue
			}
			for _, tx := range stmt.BankTranList.Transactions {
				agg.add(tx)
			}
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			agg.addAccount(string(stmt.CCAcctFrom.AcctID))
			if stmt.BankTranList == nil {
				continue
			}
			for _, tx := range stmt.BankTranList.Transactions {
				agg.add(tx)
			}
		}
	}

	record, summary := agg.finish()
	slog.Info("Built draft record from OFX file",
		"transactions", summary.Transactions,
		"credits", summary.Credits,
		"debits", summary.Debits,
		"bucketed", summary.Bucketed)

	return record, summary, nil
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

func (a *aggregator) addAccount(id string) {
	if id != "" {
		a.accounts[id] = true
	}
}

func (a *aggregator) add(tx ofxgo.Transaction) {
	a.summary.Transactions++

	// OFX amounts are signed: credits positive, debits negative.
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil {
		a.summary.Skipped++
		return
	}

	if amount.IsPositive() {
		a.summary.Credits++
		a.addCredit(tx, amount)
		return
	}

	a.summary.Debits++
	a.addDebit(tx, amount.Abs())
}

// addCredit books a deposit into the income fields. Interest and
// dividend credits also count as investment income.
func (a *aggregator) addCredit(tx ofxgo.Transaction, amount decimal.Decimal) {
	a.totalIncome = a.totalIncome.Add(amount)

	switch tx.TrnType.String() {
	case "INT":
		a.investmentIncome = a.investmentIncome.Add(amount)
		a.investmentTags["interest"] = true
		a.incomeSources["investment"] = true
	case "DIV":
		a.investmentIncome = a.investmentIncome.Add(amount)
		a.investmentTags["dividend"] = true
		a.incomeSources["investment"] = true
	case "DIRECTDEP":
		a.incomeSources["w2"] = true
	default:
		a.incomeSources["other"] = true
	}
}

// addDebit books a withdrawal into an expense bucket when its
// description matches. Unmatched debits are presumed personal spending
// and skipped.
func (a *aggregator) addDebit(tx ofxgo.Transaction, amount decimal.Decimal) {
	switch expenseBucket(transactionName(tx)) {
	case bucketVehicle:
		a.vehicle = a.vehicle.Add(amount)
		a.summary.Bucketed++
	case bucketMeals:
		a.meals = a.meals.Add(amount)
		a.summary.Bucketed++
	case bucketCharitable:
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

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Expense buckets a debit can land in.
const (
	bucketVehicle    = "vehicle"
	bucketMeals      = "meals"
	bucketCharitable = "charitable"
)

var bucketPatterns = map[string][]string{
	bucketVehicle: {
		"GAS", "FUEL", "SHELL", "CHEVRON", "EXXON", "AUTO",
		"PARKING", "TOLL", "CAR WASH", "MECHANIC",
	},
	bucketMeals: {
		"RESTAURANT", "CAFE", "COFFEE", "GRILL", "PIZZA",
		"DELI", "DINER", "BISTRO", "CATERING", "BAR & ",
	},
	bucketCharitable: {
		"DONATION", "CHARITY", "FOUNDATION", "CHURCH",
		"RED CROSS", "UNITED WAY", "GOODWILL",
	},
}

// expenseBucket matches a transaction description against the bucket
// patterns. First match wins in vehicle, meals, charitable order.
func expenseBucket(name string) string {
	upper := strings.ToUpper(name)
	for _, bucket := range []string{bucketVehicle, bucketMeals, bucketCharitable} {
		for _, pattern := range bucketPatterns[bucket] {
			if strings.Contains(upper, pattern) {
				return bucket
			}
		}
	}
	return ""
}

// transactionName picks the most descriptive label OFX offers for a
// transaction.
func transactionName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	return strings.TrimSpace(name)
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
