package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakmere/auditflow/internal/cli"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent assessments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListAssessments(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list assessments: %w", err)
			}

			fmt.Println(cli.RenderHistory(records))
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "maximum number of assessments to show")
	return cmd
}
