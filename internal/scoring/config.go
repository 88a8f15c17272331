// Package scoring computes audit risk scores from feature vectors using a
// configurable weighted model.
package scoring

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
)

//go:embed model.yaml
var defaultModelYAML []byte

// TermConfig weights one scoring term and caps its raw feature value.
type TermConfig struct {
	Weight decimal.Decimal `yaml:"weight"`
	Cap    decimal.Decimal `yaml:"cap"`
}

// LevelConfig holds the band cut points. A score lands in the higher band
// at a boundary.
type LevelConfig struct {
	MediumFrom decimal.Decimal `yaml:"medium_from"`
	HighFrom   decimal.Decimal `yaml:"high_from"`
}

// Citation names one piece of reference material backing a factor.
type Citation struct {
	Kind model.ReferenceKind `yaml:"kind"`
	ID   string              `yaml:"id"`
}

// FactorConfig is the data half of one risk factor definition: the
// predicate itself is bound by code in the factor package.
type FactorConfig struct {
	Code        string          `yaml:"code"`
	Description string          `yaml:"description"`
	Severity    model.Severity  `yaml:"severity"`
	Threshold   decimal.Decimal `yaml:"threshold"`
	Cites       []Citation      `yaml:"cites"`
}

// Model is the full risk model: scoring terms, band cut points, factor
// definitions, and the recommendation table.
type Model struct {
	Terms           map[string]TermConfig `yaml:"terms"`
	Recommendations map[string][]string   `yaml:"recommendations"`
	Levels          LevelConfig           `yaml:"levels"`
	Factors         []FactorConfig        `yaml:"factors"`
	Baseline        []string              `yaml:"baseline"`
}

// DefaultModel parses the embedded model definition.
func DefaultModel() (*Model, error) {
	return parseModel(defaultModelYAML)
}

// LoadModel reads a model definition from disk, falling back to the
// embedded default when path is empty.
func LoadModel(path string) (*Model, error) {
	if path == "" {
		return DefaultModel()
	}

	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied model path
	if err != nil {
		return nil, fmt.Errorf("reading risk model: %w", err)
	}
	m, err := parseModel(data)
	if err != nil {
		return nil, fmt.Errorf("risk model %s: %w", path, err)
	}
	return m, nil
}

func parseModel(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing risk model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.logCoverageGaps()
	return &m, nil
}

// Validate checks the model for structural problems: missing or unknown
// terms, non-positive weights or caps, out-of-order cut points, duplicate
// or malformed factors, and recommendations keyed to no factor.
func (m *Model) Validate() error {
	for _, name := range termNames() {
		tc, ok := m.Terms[name]
		if !ok {
			return fmt.Errorf("%w: missing scoring term %q", common.ErrInvalidConfig, name)
		}
		if !tc.Weight.IsPositive() {
			return fmt.Errorf("%w: term %q weight must be positive", common.ErrInvalidConfig, name)
		}
		if !tc.Cap.IsPositive() {
			return fmt.Errorf("%w: term %q cap must be positive", common.ErrInvalidConfig, name)
		}
	}
	for name := range m.Terms {
		if _, ok := termRegistry[name]; !ok {
			return fmt.Errorf("%w: unknown scoring term %q", common.ErrInvalidConfig, name)
		}
	}

	one := decimal.NewFromInt(1)
	if !m.Levels.MediumFrom.IsPositive() || m.Levels.MediumFrom.GreaterThanOrEqual(m.Levels.HighFrom) {
		return fmt.Errorf("%w: band cut points must satisfy 0 < medium_from < high_from", common.ErrInvalidConfig)
	}
	if m.Levels.HighFrom.GreaterThanOrEqual(one) {
		return fmt.Errorf("%w: high_from must be below 1", common.ErrInvalidConfig)
	}

	if len(m.Factors) == 0 {
		return fmt.Errorf("%w: no risk factors defined", common.ErrInvalidConfig)
	}
	codes := make(map[string]bool, len(m.Factors))
	for _, f := range m.Factors {
		if f.Code == "" {
			return fmt.Errorf("%w: factor with empty code", common.ErrInvalidConfig)
		}
		if codes[f.Code] {
			return fmt.Errorf("%w: duplicate factor code %q", common.ErrInvalidConfig, f.Code)
		}
		codes[f.Code] = true
		if f.Description == "" {
			return fmt.Errorf("%w: factor %q has no description", common.ErrInvalidConfig, f.Code)
		}
		if !f.Severity.Valid() {
			return fmt.Errorf("%w: factor %q has unknown severity %q", common.ErrInvalidConfig, f.Code, f.Severity)
		}
		if f.Threshold.IsNegative() {
			return fmt.Errorf("%w: factor %q threshold must not be negative", common.ErrInvalidConfig, f.Code)
		}
		for _, c := range f.Cites {
			if _, err := model.ParseReferenceKind(string(c.Kind)); err != nil {
				return fmt.Errorf("%w: factor %q: %v", common.ErrInvalidConfig, f.Code, err)
			}
			if c.ID == "" {
				return fmt.Errorf("%w: factor %q cites an empty reference id", common.ErrInvalidConfig, f.Code)
			}
		}
	}

	for code, texts := range m.Recommendations {
		if !codes[code] {
			return fmt.Errorf("%w: recommendation table keys unknown factor %q", common.ErrInvalidConfig, code)
		}
		if len(texts) == 0 {
			return fmt.Errorf("%w: factor %q maps to an empty recommendation list", common.ErrInvalidConfig, code)
		}
		for _, t := range texts {
			if t == "" {
				return fmt.Errorf("%w: factor %q maps to an empty recommendation", common.ErrInvalidConfig, code)
			}
		}
	}

	return nil
}

// logCoverageGaps warns about factors that will never produce a
// recommendation. A gap is legal; it just deserves an operator's eye.
func (m *Model) logCoverageGaps() {
	var gaps []string
	for _, f := range m.Factors {
		if len(m.Recommendations[f.Code]) == 0 {
			gaps = append(gaps, f.Code)
		}
	}
	if len(gaps) > 0 {
		sort.Strings(gaps)
		slog.Warn("Risk factors without recommendations", "codes", gaps)
	}
}

// Factor returns the definition for a code, if present.
func (m *Model) Factor(code string) (FactorConfig, bool) {
	for _, f := range m.Factors {
		if f.Code == code {
			return f, true
		}
	}
	return FactorConfig{}, false
}
