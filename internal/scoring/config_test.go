package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
)

func validModel(t *testing.T) *Model {
	t.Helper()
	m, err := DefaultModel()
	require.NoError(t, err)
	return m
}

func TestDefaultModel(t *testing.T) {
	m := validModel(t)

	assert.Len(t, m.Terms, len(termNames()), "every scoring term needs a weight and cap")
	assert.NotEmpty(t, m.Factors)
	assert.NotEmpty(t, m.Baseline)
	assert.True(t, m.Levels.MediumFrom.Equal(decimal.RequireFromString("0.34")))
	assert.True(t, m.Levels.HighFrom.Equal(decimal.RequireFromString("0.67")))

	// Every factor with a predicate threshold also carries a description.
	for _, f := range m.Factors {
		assert.NotEmpty(t, f.Description, "factor %s", f.Code)
		assert.True(t, f.Severity.Valid(), "factor %s", f.Code)
	}
}

func TestModel_Validate(t *testing.T) {
	one := decimal.NewFromInt(1)

	tests := []struct {
		mutate  func(*Model)
		name    string
		wantMsg string
	}{
		{
			name:    "missing scoring term",
			mutate:  func(m *Model) { delete(m.Terms, "deduction_ratio") },
			wantMsg: "missing scoring term",
		},
		{
			name:    "unknown scoring term",
			mutate:  func(m *Model) { m.Terms["bogus"] = TermConfig{Weight: one, Cap: one} },
			wantMsg: "unknown scoring term",
		},
		{
			name: "zero weight",
			mutate: func(m *Model) {
				m.Terms["income_level"] = TermConfig{Weight: decimal.Decimal{}, Cap: one}
			},
			wantMsg: "weight must be positive",
		},
		{
			name: "negative cap",
			mutate: func(m *Model) {
				m.Terms["income_level"] = TermConfig{Weight: one, Cap: decimal.NewFromInt(-1)}
			},
			wantMsg: "cap must be positive",
		},
		{
			name: "cut points out of order",
			mutate: func(m *Model) {
				m.Levels = LevelConfig{
					MediumFrom: decimal.RequireFromString("0.7"),
					HighFrom:   decimal.RequireFromString("0.3"),
				}
			},
			wantMsg: "band cut points",
		},
		{
			name: "high_from not below one",
			mutate: func(m *Model) {
				m.Levels = LevelConfig{
					MediumFrom: decimal.RequireFromString("0.5"),
					HighFrom:   one,
				}
			},
			wantMsg: "high_from must be below 1",
		},
		{
			name:    "no factors",
			mutate:  func(m *Model) { m.Factors = nil },
			wantMsg: "no risk factors defined",
		},
		{
			name: "empty factor code",
			mutate: func(m *Model) {
				m.Factors = append(m.Factors, FactorConfig{Description: "d", Severity: model.SeverityLow})
			},
			wantMsg: "factor with empty code",
		},
		{
			name: "duplicate factor code",
			mutate: func(m *Model) {
				m.Factors = append(m.Factors, m.Factors[0])
			},
			wantMsg: "duplicate factor code",
		},
		{
			name: "missing description",
			mutate: func(m *Model) {
				m.Factors = append(m.Factors, FactorConfig{Code: "custom_check", Severity: model.SeverityLow})
			},
			wantMsg: "has no description",
		},
		{
			name: "unknown severity",
			mutate: func(m *Model) {
				m.Factors = append(m.Factors, FactorConfig{Code: "custom_check", Description: "d", Severity: "Extreme"})
			},
			wantMsg: "unknown severity",
		},
		{
			name: "negative threshold",
			mutate: func(m *Model) {
				m.Factors = append(m.Factors, FactorConfig{
					Code: "custom_check", Description: "d", Severity: model.SeverityLow,
					Threshold: decimal.NewFromInt(-1),
				})
			},
			wantMsg: "threshold must not be negative",
		},
		{
			name: "bad citation kind",
			mutate: func(m *Model) {
				m.Factors = append(m.Factors, FactorConfig{
					Code: "custom_check", Description: "d", Severity: model.SeverityLow,
					Cites: []Citation{{Kind: "statute", ID: "1"}},
				})
			},
			wantMsg: "unknown reference kind",
		},
		{
			name: "empty citation id",
			mutate: func(m *Model) {
				m.Factors = append(m.Factors, FactorConfig{
					Code: "custom_check", Description: "d", Severity: model.SeverityLow,
					Cites: []Citation{{Kind: "section", ID: ""}},
				})
			},
			wantMsg: "cites an empty reference id",
		},
		{
			name:    "recommendation keyed to unknown factor",
			mutate:  func(m *Model) { m.Recommendations["nonexistent"] = []string{"do something"} },
			wantMsg: "keys unknown factor",
		},
		{
			name:    "empty recommendation list",
			mutate:  func(m *Model) { m.Recommendations["high_income"] = []string{} },
			wantMsg: "empty recommendation list",
		},
		{
			name:    "empty recommendation text",
			mutate:  func(m *Model) { m.Recommendations["high_income"] = []string{""} },
			wantMsg: "empty recommendation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModel(t)
			tt.mutate(m)

			err := m.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadModel(t *testing.T) {
	t.Run("empty path loads the embedded default", func(t *testing.T) {
		m, err := LoadModel("")
		require.NoError(t, err)
		assert.NotEmpty(t, m.Factors)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadModel(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading risk model")
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.yaml")
		require.NoError(t, os.WriteFile(path, defaultModelYAML, 0o600))

		m, err := LoadModel(path)
		require.NoError(t, err)
		assert.NotEmpty(t, m.Terms)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.yaml")
		require.NoError(t, os.WriteFile(path, []byte("terms: ["), 0o600))

		_, err := LoadModel(path)
		require.Error(t, err)
	})
}

func TestModel_Factor(t *testing.T) {
	m := validModel(t)

	f, ok := m.Factor("multiple_income_sources")
	require.True(t, ok)
	assert.Equal(t, model.SeverityLow, f.Severity)
	assert.True(t, f.Threshold.Equal(decimal.NewFromInt(2)),
		"multiple income sources must trigger at two sources")

	_, ok = m.Factor("nonexistent")
	assert.False(t, ok)
}
