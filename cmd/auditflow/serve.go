package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oakmere/auditflow/internal/assess"
	"github.com/oakmere/auditflow/internal/config"
	"github.com/oakmere/auditflow/internal/refdata"
	httptransport "github.com/oakmere/auditflow/internal/transport/http"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assessment HTTP API",
		Long: `Start the HTTP server exposing the assessment API, reference data
endpoints, health checks, and Prometheus metrics. The reference cache
warms in the background and keeps itself fresh while the server runs.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	serverCfg := config.LoadServerConfig()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	cache, err := initCache(ctx, store, refdata.NewMetrics())
	if err != nil {
		return err
	}
	defer cache.Close()

	assessor, err := initAssessor(cache, store, assess.NewMetrics())
	if err != nil {
		return err
	}

	handler := httptransport.NewHandler(assessor, cache, slog.Default())
	server := httptransport.NewServer(serverCfg.Addr, handler.Routes())

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", serverCfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
