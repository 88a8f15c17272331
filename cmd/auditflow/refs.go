package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakmere/auditflow/internal/cli"
	"github.com/oakmere/auditflow/internal/config"
	"github.com/oakmere/auditflow/internal/model"
	"github.com/oakmere/auditflow/internal/refdata"
)

func refsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "Inspect and refresh cached reference data",
		Long: `Work with the local cache of tax code sections and IRS publications
that back risk factor citations.`,
	}

	cmd.AddCommand(refsGetCmd())
	cmd.AddCommand(refsRefreshCmd())
	cmd.AddCommand(refsStatsCmd())

	return cmd
}

func refsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <section|publication> <id>",
		Short: "Show one reference entry, fetching it if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kind, err := model.ParseReferenceKind(args[0])
			if err != nil {
				return err
			}
			id := args[1]

			cache, cleanup, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			entry, ok := cache.Get(kind, id)
			if !ok {
				// Cache miss: fetch synchronously so the command has
				// something to show.
				if err := cache.Refresh(ctx, kind, id); err != nil {
					return fmt.Errorf("failed to fetch %s %s: %w", kind, id, err)
				}
				entry, ok = cache.Get(kind, id)
				if !ok {
					return fmt.Errorf("reference %s %s not available", kind, id)
				}
			}

			fresh := entry.FreshAt(time.Now(), cache.TTL())
			fmt.Println(cli.RenderReferenceEntry(entry, fresh))
			return nil
		},
	}
}

func refsRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh [section|publication <id>]",
		Short: "Refresh cached reference entries from upstream",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			all, _ := cmd.Flags().GetBool("all")

			cache, cleanup, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 2 {
				kind, err := model.ParseReferenceKind(args[0])
				if err != nil {
					return err
				}
				if err := cache.Refresh(ctx, kind, args[1]); err != nil {
					return err
				}
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Refreshed %s %s", kind, args[1])))
				return nil
			}

			if !all {
				return fmt.Errorf("specify a kind and id, or use --all")
			}

			refreshed, failed := 0, 0
			refresh := func(kind model.ReferenceKind, ids []string) {
				for _, id := range ids {
					if ctx.Err() != nil {
						return
					}
					if err := cache.Refresh(ctx, kind, id); err != nil {
						failed++
						fmt.Println(cli.FormatWarning(fmt.Sprintf("%s %s: %v", kind, id, err)))
						continue
					}
					refreshed++
				}
			}
			refresh(model.KindSection, refdata.DefaultWarmSections())
			refresh(model.KindPublication, refdata.DefaultWarmPublications())

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Refreshed %d entries (%d failed)", refreshed, failed)))
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "refresh the full reference catalog")
	return cmd
}

func refsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show reference cache contents and counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, cleanup, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Println(cli.RenderCacheStats(cache.Stats()))
			return nil
		},
	}
}

// openCache builds a cache over local storage with persisted entries
// loaded but no background loop. The cleanup closes both.
func openCache(cmd *cobra.Command) (*refdata.Cache, func(), error) {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	fetcher := refdata.NewHTTPFetcher(config.LoadFetcherConfig())
	cache, err := refdata.New(fetcher, store, nil, config.LoadCacheConfig())
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	if err := cache.Load(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		cache.Close()
		_ = store.Close()
	}
	return cache, cleanup, nil
}
