// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/oakmere/auditflow/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Reference entry operations
	SaveReferenceEntry(ctx context.Context, entry *model.ReferenceEntry) error
	GetReferenceEntry(ctx context.Context, kind model.ReferenceKind, id string) (*model.ReferenceEntry, error)
	ListReferenceEntries(ctx context.Context) ([]model.ReferenceEntry, error)

	// Assessment history operations
	SaveAssessment(ctx context.Context, record *model.AssessmentRecord) error
	GetAssessment(ctx context.Context, id string) (*model.AssessmentRecord, error)
	ListAssessments(ctx context.Context, limit int) ([]model.AssessmentRecord, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ReferenceFetcher retrieves a single piece of reference material from an
// upstream source. Implementations must honor ctx cancellation; the cache
// bounds every fetch with its configured timeout.
type ReferenceFetcher interface {
	Fetch(ctx context.Context, kind model.ReferenceKind, id string) (*model.ReferenceEntry, error)
}

// ReferenceReader is the read-only cache view used while identifying risk
// factors. Get never blocks and never fetches; it reports whatever the
// cache currently holds, fresh or stale.
type ReferenceReader interface {
	Get(kind model.ReferenceKind, id string) (model.ReferenceEntry, bool)
}

// Assessor runs risk assessments and exposes the cached reference data
// that backs factor citations.
type Assessor interface {
	Analyze(ctx context.Context, record model.TaxDataRecord) (model.AssessmentResult, error)
	Section(id string) (model.ReferenceEntry, bool)
	Publication(id string) (model.ReferenceEntry, bool)
	History(ctx context.Context, limit int) ([]model.AssessmentRecord, error)
}

// CacheStats reports reference cache activity since startup.
type CacheStats struct {
	Entries         int
	Hits            uint64
	Misses          uint64
	StaleServed     uint64
	Refreshes       uint64
	RefreshFailures uint64
}

// BatchStats shows the results of a batch assessment run.
type BatchStats struct {
	ByLevel  map[model.RiskLevel]int
	Total    int
	Assessed int
	Failed   int
	Duration time.Duration
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
