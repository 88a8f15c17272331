package cli

import (
	"fmt"
	"strings"

	"github.com/oakmere/auditflow/internal/model"
	"github.com/oakmere/auditflow/internal/service"
)

// RenderAssessment formats a full assessment result for the terminal.
func RenderAssessment(result model.AssessmentResult) string {
	var b strings.Builder

	score := result.Score.Round(4).String()
	b.WriteString(fmt.Sprintf("%s %s\n", BoldStyle.Render("Audit risk score:"), score))
	b.WriteString(fmt.Sprintf("%s %s\n", BoldStyle.Render("Risk level:"), LevelStyle(result.Level).Render(string(result.Level))))

	if len(result.Factors) > 0 {
		b.WriteString("\n" + BoldStyle.Render("Risk factors:") + "\n")
		for _, factor := range result.Factors {
			line := fmt.Sprintf("  %s %s",
				SeverityStyle(factor.Severity).Render("["+string(factor.Severity)+"]"),
				factor.Description)
			if len(factor.CitedSections) > 0 {
				line += SubtleStyle.Render(" (" + strings.Join(factor.CitedSections, ", ") + ")")
			}
			b.WriteString(line + "\n")
		}
	} else {
		b.WriteString("\n" + FormatSuccess("No risk factors identified") + "\n")
	}

	if len(result.Recommendations) > 0 {
		b.WriteString("\n" + BoldStyle.Render("Recommendations:") + "\n")
		for _, rec := range result.Recommendations {
			b.WriteString("  • " + rec + "\n")
		}
	}

	return RenderBox("Audit Risk Assessment", strings.TrimRight(b.String(), "\n"))
}

// RenderReferenceEntry formats a cached reference entry, noting whether
// the copy being shown is fresh or stale.
func RenderReferenceEntry(entry model.ReferenceEntry, fresh bool) string {
	var b strings.Builder

	label := titleForKind(entry.Kind, entry.ID)
	b.WriteString(BoldStyle.Render(entry.Title) + "\n")
	b.WriteString(SubtleStyle.Render(label) + "\n\n")
	b.WriteString(entry.Content + "\n")

	meta := fmt.Sprintf("fetched %s from %s", entry.FetchedAt.Format("2006-01-02 15:04"), entry.Source)
	if !fresh {
		meta += " " + WarningStyle.Render("(stale, refresh scheduled)")
	}
	b.WriteString("\n" + SubtleStyle.Render(meta))

	return RenderBox(BookIcon+" Reference", b.String())
}

func titleForKind(kind model.ReferenceKind, id string) string {
	if kind == model.KindSection {
		return "Tax code section " + id
	}
	return "IRS Publication " + id
}

// RenderHistory formats recent assessments as an aligned table.
func RenderHistory(records []model.AssessmentRecord) string {
	if len(records) == 0 {
		return FormatInfo("No assessments recorded yet")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-20s %-12s %-10s %-8s %s\n",
		"Assessed", "Income", "Score", "Level", "Factors"))
	for _, rec := range records {
		b.WriteString(fmt.Sprintf("%-20s %-12s %-10s %-8s %d\n",
			rec.AssessedAt.Format("2006-01-02 15:04"),
			rec.TotalIncome.StringFixed(2),
			rec.Result.Score.Round(4).String(),
			LevelStyle(rec.Result.Level).Render(string(rec.Result.Level)),
			len(rec.Result.Factors)))
	}

	return RenderBox(ChartIcon+" Assessment History", strings.TrimRight(b.String(), "\n"))
}

// RenderCacheStats formats reference cache counters.
func RenderCacheStats(stats service.CacheStats) string {
	content := fmt.Sprintf(`Entries:          %d
Hits:             %d
Misses:           %d
Stale served:     %d
Refreshes:        %d
Refresh failures: %d`,
		stats.Entries, stats.Hits, stats.Misses,
		stats.StaleServed, stats.Refreshes, stats.RefreshFailures)

	return RenderBox("Reference Cache", content)
}

// RenderBatchStats summarizes a batch assessment run.
func RenderBatchStats(stats service.BatchStats) string {
	content := fmt.Sprintf(`Records:  %d
Assessed: %d
Failed:   %d

Low:      %d
Medium:   %d
High:     %d`,
		stats.Total, stats.Assessed, stats.Failed,
		stats.ByLevel[model.RiskLevelLow],
		stats.ByLevel[model.RiskLevelMedium],
		stats.ByLevel[model.RiskLevelHigh])

	return RenderBox("Batch Assessment", content)
}
