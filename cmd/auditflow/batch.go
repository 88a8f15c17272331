package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/oakmere/auditflow/internal/assess"
	"github.com/oakmere/auditflow/internal/cli"
	"github.com/oakmere/auditflow/internal/model"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Assess many records from a JSONL file",
		Long: `Run assessments over a JSON Lines file, one tax data record per line.

Bad lines are reported and skipped; the run continues. The summary shows
how many records landed in each risk level.`,
		RunE: runBatch,
	}

	cmd.Flags().StringP("file", "f", "", "path to the records JSONL file")
	cmd.Flags().StringP("output", "o", "summary", "output format (summary, jsonl)")
	cmd.Flags().Bool("no-save", false, "do not record assessments in history")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	file, _ := cmd.Flags().GetString("file")
	output, _ := cmd.Flags().GetString("output")
	noSave, _ := cmd.Flags().GetBool("no-save")

	if output != "summary" && output != "jsonl" {
		return fmt.Errorf("unknown output format %q (want summary or jsonl)", output)
	}

	data, err := os.ReadFile(file) // #nosec G304 -- user-supplied input path
	if err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	cache, err := initCache(ctx, store, nil)
	if err != nil {
		return err
	}
	defer cache.Close()

	historyStore := store
	if noSave {
		historyStore = nil
	}
	assessor, err := initAssessor(cache, historyStore, nil)
	if err != nil {
		return err
	}

	bar := newBatchBar(countRecords(data), output == "summary")
	encoder := json.NewEncoder(os.Stdout)

	var lineErrs []error
	onResult := func(res assess.BatchResult) {
		if bar != nil {
			_ = bar.Add(1)
		}
		if res.Err != nil {
			lineErrs = append(lineErrs, res.Err)
			return
		}
		if output == "jsonl" {
			payload := struct {
				Line           int             `json:"line"`
				AuditRiskScore float64         `json:"audit_risk_score"`
				RiskLevel      model.RiskLevel `json:"risk_level"`
				RiskFactors    []string        `json:"risk_factors"`
			}{
				Line:           res.Line,
				AuditRiskScore: res.Result.Score.Round(4).InexactFloat64(),
				RiskLevel:      res.Result.Level,
				RiskFactors:    res.Result.Factors.Descriptions(),
			}
			if err := encoder.Encode(payload); err != nil {
				slog.Warn("Failed to write batch result", "line", res.Line, "error", err)
			}
		}
	}

	stats, err := assessor.RunBatch(ctx, bytes.NewReader(data), onResult)
	if err != nil {
		return err
	}

	for _, lineErr := range lineErrs {
		slog.Warn("Record skipped", "error", lineErr)
	}

	if output == "summary" {
		fmt.Println(cli.RenderBatchStats(stats))
	}
	return nil
}

// countRecords counts non-empty lines so the progress bar has a total.
func countRecords(data []byte) int {
	count := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			count++
		}
	}
	return count
}

// newBatchBar builds the progress bar for summary mode. In jsonl mode
// stdout carries results, so no bar is drawn.
func newBatchBar(total int, enabled bool) *progressbar.ProgressBar {
	if !enabled || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Assessing records...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}
