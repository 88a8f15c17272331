package scoring

import (
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

// exampleVector mirrors a fairly ordinary return: W-2 plus a side business,
// moderate deductions, light investment activity, no income history.
func exampleVector() model.FeatureVector {
	return model.FeatureVector{
		TotalIncome:                dec("100000"),
		IncomeSourceCount:          2,
		DeductionRatio:             model.DefinedRatio(dec("0.2")),
		ItemizedDeductionCount:     2,
		BusinessExpenseRatio:       model.DefinedRatio(dec("0.4")),
		InvestmentIncome:           dec("5000"),
		CapitalGains:               dec("2000"),
		InvestmentTransactionCount: 2,
		HomeOfficeDeduction:        dec("5000"),
		VehicleExpenses:            dec("3000"),
		MealEntertainmentExpenses:  dec("2000"),
		CharitableRatio:            model.DefinedRatio(dec("0.05")),
		IncomeVolatility:           model.UndefinedRatio(),
	}
}

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer(validModel(t))

	score, err := scorer.Score(exampleVector())
	require.NoError(t, err)

	// With income volatility undefined its weight leaves the denominator,
	// so the remaining terms renormalize over 0.90.
	assert.True(t, score.Equal(dec("0.2268518518518519")),
		"expected 0.2268518518518519, got %s", score)
	assert.Equal(t, model.RiskLevelLow, scorer.LevelFor(score))
}

func TestScorer_Deterministic(t *testing.T) {
	scorer := NewScorer(validModel(t))

	first, err := scorer.Score(exampleVector())
	require.NoError(t, err)
	second, err := scorer.Score(exampleVector())
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String(),
		"identical vectors must produce bit-identical scores")
}

func TestScorer_ZeroVector(t *testing.T) {
	scorer := NewScorer(validModel(t))

	score, err := scorer.Score(model.FeatureVector{})
	require.NoError(t, err)

	assert.True(t, score.IsZero(), "expected zero score, got %s", score)
	assert.Equal(t, model.RiskLevelLow, scorer.LevelFor(score))
}

func TestScorer_ClampsToOne(t *testing.T) {
	scorer := NewScorer(validModel(t))

	extreme := model.FeatureVector{
		TotalIncome:                dec("10000000"),
		IncomeSourceCount:          50,
		DeductionRatio:             model.DefinedRatio(dec("5")),
		BusinessExpenseRatio:       model.DefinedRatio(dec("10")),
		InvestmentTransactionCount: 500,
		HomeOfficeDeduction:        dec("1000000"),
		VehicleExpenses:            dec("1000000"),
		MealEntertainmentExpenses:  dec("1000000"),
		CharitableRatio:            model.DefinedRatio(dec("2")),
		IncomeVolatility:           model.DefinedRatio(dec("5")),
	}

	score, err := scorer.Score(extreme)
	require.NoError(t, err)

	assert.True(t, score.Equal(decimal.NewFromInt(1)), "expected score 1, got %s", score)
	assert.Equal(t, model.RiskLevelHigh, scorer.LevelFor(score))
}

func TestScorer_Renormalization(t *testing.T) {
	scorer := NewScorer(validModel(t))

	// Income at half its cap, everything else zero. Six terms contribute
	// (total weight 0.50), so the 0.05 weighted sum renormalizes to 0.1.
	base := model.FeatureVector{TotalIncome: dec("200000")}

	score, err := scorer.Score(base)
	require.NoError(t, err)
	assert.True(t, score.Equal(dec("0.1")), "expected 0.1, got %s", score)

	// Defining volatility at zero adds its weight to the denominator
	// without adding anything to the sum, diluting the score.
	withVolatility := base
	withVolatility.IncomeVolatility = model.DefinedRatio(decimal.Decimal{})

	diluted, err := scorer.Score(withVolatility)
	require.NoError(t, err)
	assert.True(t, diluted.Equal(dec("0.0833333333333333")),
		"expected 0.0833333333333333, got %s", diluted)
	assert.True(t, diluted.LessThan(score),
		"a defined zero term must dilute the score; an undefined one must not")
}

func TestScorer_NegativeRawValueClampsToZero(t *testing.T) {
	scorer := NewScorer(validModel(t))

	// A single income source makes the sources term (count-1) zero; a
	// zero-source record drives it negative, which clamps to zero rather
	// than subtracting from the score.
	none := model.FeatureVector{}
	one := model.FeatureVector{IncomeSourceCount: 1}

	scoreNone, err := scorer.Score(none)
	require.NoError(t, err)
	scoreOne, err := scorer.Score(one)
	require.NoError(t, err)

	assert.True(t, scoreNone.IsZero())
	assert.True(t, scoreOne.IsZero())
}

func TestScorer_MissingTermIsInvariantViolation(t *testing.T) {
	m := validModel(t)
	delete(m.Terms, "income_level")
	scorer := NewScorer(m)

	_, err := scorer.Score(exampleVector())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvariantViolation)
}

func TestScorer_LevelFor(t *testing.T) {
	scorer := NewScorer(validModel(t))

	tests := []struct {
		score string
		want  model.RiskLevel
	}{
		{"0", model.RiskLevelLow},
		{"0.33", model.RiskLevelLow},
		{"0.3399", model.RiskLevelLow},
		{"0.34", model.RiskLevelMedium}, // boundary belongs to the higher band
		{"0.5", model.RiskLevelMedium},
		{"0.6699", model.RiskLevelMedium},
		{"0.67", model.RiskLevelHigh}, // boundary belongs to the higher band
		{"0.99", model.RiskLevelHigh},
		{"1", model.RiskLevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.score, func(t *testing.T) {
			assert.Equal(t, tt.want, scorer.LevelFor(dec(tt.score)))
		})
	}
}
