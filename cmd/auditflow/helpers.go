package main

import (
	"context"
	"fmt"

	"github.com/oakmere/auditflow/internal/assess"
	"github.com/oakmere/auditflow/internal/config"
	"github.com/oakmere/auditflow/internal/refdata"
	"github.com/oakmere/auditflow/internal/scoring"
	"github.com/oakmere/auditflow/internal/service"
	"github.com/oakmere/auditflow/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initCache builds and starts the reference cache over the given storage.
// Callers own the returned cache and must Close it.
func initCache(ctx context.Context, store service.Storage, metrics *refdata.Metrics) (*refdata.Cache, error) {
	fetcher := refdata.NewHTTPFetcher(config.LoadFetcherConfig())

	cache, err := refdata.New(fetcher, store, metrics, config.LoadCacheConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create reference cache: %w", err)
	}
	if err := cache.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start reference cache: %w", err)
	}

	return cache, nil
}

// initAssessor wires the scoring model, reference cache, and storage
// into the assessment service.
func initAssessor(cache *refdata.Cache, store service.Storage, metrics *assess.Metrics) (*assess.Service, error) {
	m, err := scoring.LoadModel(config.ModelPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring model: %w", err)
	}

	opts := []assess.Option{}
	if store != nil {
		opts = append(opts, assess.WithStorage(store))
	}
	if metrics != nil {
		opts = append(opts, assess.WithMetrics(metrics))
	}

	var refs service.ReferenceReader
	if cache != nil {
		refs = cache
	}

	svc, err := assess.New(m, refs, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build assessment service: %w", err)
	}
	return svc, nil
}
