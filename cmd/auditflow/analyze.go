package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakmere/auditflow/internal/cli"
	"github.com/oakmere/auditflow/internal/model"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Assess a single tax data record",
		Long: `Run a full audit risk assessment on one tax data record.

The record is JSON with the same field names the HTTP API accepts.
Results are saved to the local history unless --no-save is given.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("file", "f", "", "path to the record JSON (use - for stdin)")
	cmd.Flags().StringP("output", "o", "text", "output format (text, json)")
	cmd.Flags().Bool("no-save", false, "do not record the assessment in history")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	file, _ := cmd.Flags().GetString("file")
	output, _ := cmd.Flags().GetString("output")
	noSave, _ := cmd.Flags().GetBool("no-save")

	record, err := readRecord(file)
	if err != nil {
		return err
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

	result, err := assessor.Analyze(ctx, *record)
	if err != nil {
		return err
	}

	switch output {
	case "json":
		return printResultJSON(result)
	case "text":
		fmt.Println(cli.RenderAssessment(result))
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", output)
	}
}

// readRecord loads one TaxDataRecord from a file or stdin.
func readRecord(path string) (*model.TaxDataRecord, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path) // #nosec G304 -- user-supplied input path
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var record model.TaxDataRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	return &record, nil
}

// printResultJSON writes the assessment in the same shape as the HTTP
// API response.
func printResultJSON(result model.AssessmentResult) error {
	payload := struct {
		AuditRiskScore  float64            `json:"audit_risk_score"`
		RiskLevel       model.RiskLevel    `json:"risk_level"`
		RiskFactors     []string           `json:"risk_factors"`
		Factors         []model.RiskFactor `json:"factors"`
		Recommendations []string           `json:"recommendations"`
	}{
		AuditRiskScore:  result.Score.Round(4).InexactFloat64(),
		RiskLevel:       result.Level,
		RiskFactors:     result.Factors.Descriptions(),
		Factors:         result.Factors,
		Recommendations: result.Recommendations,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
