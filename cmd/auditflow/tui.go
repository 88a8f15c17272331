package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakmere/auditflow/internal/tui"
)

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse assessment history in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			// The browser only reads history, so no reference cache is
			// started here.
			assessor, err := initAssessor(nil, store, nil)
			if err != nil {
				return err
			}

			return tui.Run(ctx, assessor, limit)
		},
	}

	cmd.Flags().IntP("limit", "n", 50, "maximum number of assessments to load")
	return cmd
}
