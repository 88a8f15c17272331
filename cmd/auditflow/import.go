package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oakmere/auditflow/internal/cli"
	ofximport "github.com/oakmere/auditflow/internal/imports/ofx"
	plaidimport "github.com/oakmere/auditflow/internal/imports/plaid"
	"github.com/oakmere/auditflow/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build draft tax data records from financial accounts",
		Long: `Build a draft TaxDataRecord from transaction data.

The draft aggregates income and matches expenses into the buckets the
risk engine understands. Review and correct it before filing it into an
assessment; the heuristics are deliberately conservative.`,
	}

	cmd.AddCommand(importOFXCmd())
	cmd.AddCommand(importPlaidCmd())

	return cmd
}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ofx <file.ofx>",
		Short: "Build a draft record from an OFX/QFX export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			file, err := os.Open(args[0]) // #nosec G304 -- user-supplied input path
			if err != nil {
				return fmt.Errorf("failed to open OFX file: %w", err)
			}
			defer func() { _ = file.Close() }()

			record, summary, err := ofximport.NewImporter().BuildRecord(ctx, file)
			if err != nil {
				return err
			}

			displayImportSummary(summary.Transactions, summary.Credits, summary.Debits,
				summary.Bucketed, summary.Skipped, summary.Accounts)

			return finishImport(cmd, record)
		},
	}

	addImportFlags(cmd)
	return cmd
}

func importPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Build a draft record from Plaid transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// Get Plaid configuration
			plaidConfig := plaidimport.Config{
				ClientID:    viper.GetString("plaid.client_id"),
				Secret:      viper.GetString("plaid.secret"),
				Environment: viper.GetString("plaid.environment"),
				AccessToken: viper.GetString("plaid.access_token"),
			}
			if plaidConfig.Environment == "" {
				plaidConfig.Environment = "sandbox"
			}

			client, err := plaidimport.NewClient(plaidConfig)
			if err != nil {
				return fmt.Errorf("failed to create Plaid client: %w", err)
			}

			startDate, endDate, err := importDateRange(cmd)
			if err != nil {
				return err
			}

			slog.Info("Date range",
				"start", startDate.Format("2006-01-02"),
				"end", endDate.Format("2006-01-02"))

			record, summary, err := client.BuildRecord(ctx, startDate, endDate)
			if err != nil {
				return err
			}

			displayImportSummary(summary.Transactions, summary.Credits, summary.Debits,
				summary.Bucketed, summary.Skipped, summary.Accounts)

			return finishImport(cmd, record)
		},
	}

	addImportFlags(cmd)
	cmd.Flags().StringP("start-date", "s", "", "Start date for transaction import (format: 2006-01-02)")
	cmd.Flags().StringP("end-date", "e", "", "End date for transaction import (format: 2006-01-02)")
	cmd.Flags().IntP("days", "d", 365, "Number of days to import (used if start/end dates not specified)")
	return cmd
}

func addImportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "write the draft record JSON to this file (default stdout)")
	cmd.Flags().Bool("analyze", false, "run an assessment on the draft immediately")
}

// importDateRange resolves the Plaid import window from flags.
func importDateRange(cmd *cobra.Command) (startDate, endDate time.Time, err error) {
	startStr, _ := cmd.Flags().GetString("start-date")
	endStr, _ := cmd.Flags().GetString("end-date")

	if startStr != "" && endStr != "" {
		startDate, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date format: %w", err)
		}
		endDate, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date format: %w", err)
		}
		return startDate, endDate, nil
	}

	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = 365
	}

	endDate = time.Now()
	startDate = endDate.AddDate(0, 0, -days)
	return startDate, endDate, nil
}

func displayImportSummary(transactions, credits, debits, bucketed, skipped int, accounts []string) {
	content := fmt.Sprintf(`Transactions: %d
Credits:      %d
Debits:       %d
Bucketed:     %d
Skipped:      %d

Accounts: %s`,
		transactions, credits, debits, bucketed, skipped,
		strings.Join(accounts, ", "))

	fmt.Println(cli.RenderBox("Import Summary", content))
}

// finishImport writes the draft record and optionally assesses it.
func finishImport(cmd *cobra.Command, record *model.TaxDataRecord) error {
	output, _ := cmd.Flags().GetString("output")
	analyze, _ := cmd.Flags().GetBool("analyze")

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode draft record: %w", err)
	}

	if output == "" {
		fmt.Println(string(data))
	} else {
		if err := os.WriteFile(output, append(data, '\n'), 0o600); err != nil {
			return fmt.Errorf("failed to write draft record: %w", err)
		}
		fmt.Println(cli.FormatSuccess("Draft record written to " + output))
	}

	if !analyze {
		return nil
	}
	return assessDraft(cmd.Context(), record)
}

// assessDraft runs the standard pipeline over a freshly imported draft.
func assessDraft(ctx context.Context, record *model.TaxDataRecord) error {
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

	assessor, err := initAssessor(cache, store, nil)
	if err != nil {
		return err
	}

	result, err := assessor.Analyze(ctx, *record)
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderAssessment(result))
	return nil
}
