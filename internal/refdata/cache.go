// Package refdata caches tax code sections and IRS publication summaries
// with stale-while-revalidate semantics. Reads never block on upstream:
// a stale entry keeps being served while a background refresh replaces it,
// and a failed refresh keeps the previous entry in place.
package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
	"github.com/oakmere/auditflow/internal/service"
)

// Config tunes cache lifetimes and the background sync loop.
type Config struct {
	TTL              time.Duration
	SyncInterval     time.Duration
	FetchTimeout     time.Duration
	WarmSections     []string
	WarmPublications []string
}

// withDefaults fills unset durations.
func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = 24 * time.Hour
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = time.Hour
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	return c
}

// refreshRequest names one entry queued for background refresh.
type refreshRequest struct {
	kind model.ReferenceKind
	id   string
}

// Cache holds reference entries in memory, persists them through storage,
// and refreshes them in the background. Per entry the lifecycle is
// absent, fetching, fresh, stale, fetching again; a stale entry whose
// refresh keeps failing stays servable indefinitely.
type Cache struct {
	fetcher service.ReferenceFetcher
	store   service.Storage
	logger  *slog.Logger
	metrics *Metrics
	cfg     Config

	mu      sync.RWMutex
	entries map[string]model.ReferenceEntry

	group     singleflight.Group
	refreshCh chan refreshRequest
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	hits            atomic.Uint64
	misses          atomic.Uint64
	staleServed     atomic.Uint64
	refreshes       atomic.Uint64
	refreshFailures atomic.Uint64
}

// New creates a cache over the given fetcher. Storage may be nil for a
// purely in-memory cache; metrics may be nil to record nothing.
func New(fetcher service.ReferenceFetcher, store service.Storage, metrics *Metrics, cfg Config) (*Cache, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("%w: reference fetcher", common.ErrMissingConfig)
	}
	return &Cache{
		fetcher:   fetcher,
		store:     store,
		logger:    slog.Default().With("component", "refdata"),
		metrics:   metrics,
		cfg:       cfg.withDefaults(),
		entries:   make(map[string]model.ReferenceEntry),
		refreshCh: make(chan refreshRequest, 64),
		stopCh:    make(chan struct{}),
	}, nil
}

// Get returns the cached entry for kind/id, fresh or stale, without ever
// blocking. A stale hit or a miss schedules a background refresh and
// returns immediately with what the cache has now.
func (c *Cache) Get(kind model.ReferenceKind, id string) (model.ReferenceEntry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[model.ReferenceKey(kind, id)]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		c.metrics.IncrementLookup("miss")
		c.scheduleRefresh(kind, id)
		return model.ReferenceEntry{}, false
	}

	if !entry.FreshAt(time.Now(), c.cfg.TTL) {
		c.staleServed.Add(1)
		c.metrics.IncrementLookup("stale")
		c.scheduleRefresh(kind, id)
		return entry, true
	}

	c.hits.Add(1)
	c.metrics.IncrementLookup("hit")
	return entry, true
}

// scheduleRefresh queues a background refresh without blocking. A full
// queue drops the request; the periodic sweep will catch the entry later.
func (c *Cache) scheduleRefresh(kind model.ReferenceKind, id string) {
	select {
	case c.refreshCh <- refreshRequest{kind: kind, id: id}:
	default:
	}
}

// Refresh fetches one entry from upstream and replaces the cached copy
// whole. Concurrent refreshes of the same entry collapse into a single
// upstream call; every caller gets that call's outcome. On failure the
// previous entry stays in place and a CacheFetchError is returned.
func (c *Cache) Refresh(ctx context.Context, kind model.ReferenceKind, id string) error {
	key := model.ReferenceKey(kind, id)
	_, err, _ := c.group.Do(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()

		start := time.Now()
		entry, fetchErr := c.fetcher.Fetch(fetchCtx, kind, id)
		c.metrics.ObserveRefreshLatency(time.Since(start))

		if fetchErr != nil {
			c.refreshFailures.Add(1)
			c.metrics.IncrementRefresh("failure")
			c.logger.Warn("reference refresh failed, keeping previous entry",
				"kind", kind, "id", id, "error", fetchErr)
			return nil, common.NewCacheFetchError(string(kind), id, fetchErr)
		}

		c.mu.Lock()
		c.entries[key] = *entry
		c.mu.Unlock()

		c.refreshes.Add(1)
		c.metrics.IncrementRefresh("success")
		c.persist(ctx, entry)

		c.logger.Debug("refreshed reference entry", "kind", kind, "id", id)
		return nil, nil
	})
	return err
}

// persist writes an entry through to storage. Persistence is best-effort:
// a storage failure never invalidates the in-memory copy.
func (c *Cache) persist(ctx context.Context, entry *model.ReferenceEntry) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveReferenceEntry(ctx, entry); err != nil {
		c.logger.Warn("failed to persist reference entry",
			"kind", entry.Kind, "id", entry.ID, "error", err)
	}
}

// Start loads persisted entries, warms the configured reference material,
// and begins the background refresh loop. It returns once the warmup pass
// finishes; the loop runs until ctx is canceled or Close is called.
func (c *Cache) Start(ctx context.Context) error {
	if err := c.Load(ctx); err != nil {
		return err
	}
	c.warm(ctx)

	c.wg.Add(1)
	go c.run(ctx)
	return nil
}

// Load seeds memory from storage without starting the background loop.
// Entries past their TTL come back stale and refresh on demand.
func (c *Cache) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	entries, err := c.store.ListReferenceEntries(ctx)
	if err != nil {
		return fmt.Errorf("loading persisted reference entries: %w", err)
	}

	c.mu.Lock()
	for _, entry := range entries {
		c.entries[entry.Key()] = entry
	}
	c.mu.Unlock()

	if len(entries) > 0 {
		c.logger.Info("loaded persisted reference entries", "count", len(entries))
	}
	return nil
}

// warm primes the configured warm lists, retrying each entry a few times.
// Warmup failures are logged and skipped; the sweep keeps trying later.
func (c *Cache) warm(ctx context.Context) {
	retryOpts := service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}

	warm := func(kind model.ReferenceKind, ids []string) {
		for _, id := range ids {
			if ctx.Err() != nil {
				return
			}
			c.mu.RLock()
			entry, ok := c.entries[model.ReferenceKey(kind, id)]
			c.mu.RUnlock()
			if ok && entry.FreshAt(time.Now(), c.cfg.TTL) {
				continue
			}

			err := common.WithRetry(ctx, func() error {
				return c.Refresh(ctx, kind, id)
			}, retryOpts)
			if err != nil {
				c.logger.Warn("warmup fetch failed", "kind", kind, "id", id, "error", err)
			}
		}
	}

	warm(model.KindSection, c.cfg.WarmSections)
	warm(model.KindPublication, c.cfg.WarmPublications)
}

// run is the background loop: it serves queued refresh requests and
// sweeps for stale entries every sync interval.
func (c *Cache) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case req := <-c.refreshCh:
			if err := c.Refresh(ctx, req.kind, req.id); err != nil {
				c.logger.Debug("background refresh failed", "kind", req.kind, "id", req.id, "error", err)
			}
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep refreshes every entry past its TTL.
func (c *Cache) sweep(ctx context.Context) {
	now := time.Now()

	c.mu.RLock()
	var stale []refreshRequest
	for _, entry := range c.entries {
		if !entry.FreshAt(now, c.cfg.TTL) {
			stale = append(stale, refreshRequest{kind: entry.Kind, id: entry.ID})
		}
	}
	c.mu.RUnlock()

	if len(stale) == 0 {
		return
	}
	c.logger.Debug("sweeping stale reference entries", "count", len(stale))

	for _, req := range stale {
		if ctx.Err() != nil {
			return
		}
		if err := c.Refresh(ctx, req.kind, req.id); err != nil {
			c.logger.Debug("sweep refresh failed", "kind", req.kind, "id", req.id, "error", err)
		}
	}
}

// TTL returns the freshness window entries are judged against.
func (c *Cache) TTL() time.Duration {
	return c.cfg.TTL
}

// Stats reports cache activity since startup.
func (c *Cache) Stats() service.CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()

	return service.CacheStats{
		Entries:         entries,
		Hits:            c.hits.Load(),
		Misses:          c.misses.Load(),
		StaleServed:     c.staleServed.Load(),
		Refreshes:       c.refreshes.Load(),
		RefreshFailures: c.refreshFailures.Load(),
	}
}

// Close stops the background loop and waits for it to exit.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()
}

// Ensure Cache implements the read view used by factor identification.
var _ service.ReferenceReader = (*Cache)(nil)
