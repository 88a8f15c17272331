// Package recommend maps identified risk factors onto actionable
// recommendations.
package recommend

import "github.com/oakmere/auditflow/internal/model"

// Generator produces recommendations from identified factors via a static
// lookup table. The table is validated when the risk model loads; at this
// point an unknown factor code simply contributes nothing.
type Generator struct {
	table    map[string][]string
	baseline []string
}

// NewGenerator builds a generator over the model's recommendation table
// and its baseline list for factor-free results.
func NewGenerator(table map[string][]string, baseline []string) *Generator {
	return &Generator{table: table, baseline: baseline}
}

// Generate walks the factors in order, concatenating each code's
// recommendations and dropping duplicates so the first occurrence keeps
// its position. When no factor contributed any text, the baseline list is
// returned instead.
func (g *Generator) Generate(factors model.RiskFactors) []string {
	out := make([]string, 0, len(factors))
	seen := make(map[string]bool, len(factors))

	for _, f := range factors {
		for _, text := range g.table[f.Code] {
			if seen[text] {
				continue
			}
			seen[text] = true
			out = append(out, text)
		}
	}

	if len(out) == 0 {
		out = append(out, g.baseline...)
	}
	return out
}
