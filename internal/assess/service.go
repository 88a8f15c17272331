package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/factor"
	"github.com/oakmere/auditflow/internal/feature"
	"github.com/oakmere/auditflow/internal/model"
	"github.com/oakmere/auditflow/internal/recommend"
	"github.com/oakmere/auditflow/internal/scoring"
	"github.com/oakmere/auditflow/internal/service"
)

// Service runs assessments end to end. It implements service.Assessor.
type Service struct {
	scorer     *scoring.Scorer
	identifier *factor.Identifier
	generator  *recommend.Generator
	refs       service.ReferenceReader
	store      service.Storage
	metrics    *Metrics
	logger     *slog.Logger
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithStorage enables assessment history persistence.
func WithStorage(store service.Storage) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithMetrics attaches Prometheus metrics to the pipeline.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an assessment service from a loaded scoring model. The
// reference reader supplies citation lookups and may be nil, in which
// case factors carry no cited sections.
func New(m *scoring.Model, refs service.ReferenceReader, opts ...Option) (*Service, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: scoring model is required", common.ErrMissingConfig)
	}

	identifier, err := factor.NewIdentifier(m.Factors, refs)
	if err != nil {
		return nil, fmt.Errorf("building factor identifier: %w", err)
	}

	s := &Service{
		scorer:     scoring.NewScorer(m),
		identifier: identifier,
		generator:  recommend.NewGenerator(m.Recommendations, m.Baseline),
		refs:       refs,
		logger:     slog.Default().With("component", "assess"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Analyze validates a record and runs the full pipeline: feature
// extraction, scoring, banding, factor identification, and
// recommendation generation. History persistence is best-effort and
// never fails the assessment.
func (s *Service) Analyze(ctx context.Context, record model.TaxDataRecord) (model.AssessmentResult, error) {
	start := time.Now()

	normalized := record.Normalized()
	if err := Validate(normalized); err != nil {
		var vErr *common.ValidationError
		if errors.As(err, &vErr) {
			s.metrics.IncrementValidationFailure(vErr.Field)
		}
		return model.AssessmentResult{}, err
	}

	vector := feature.Extract(normalized)

	score, err := s.scorer.Score(vector)
	if err != nil {
		return model.AssessmentResult{}, fmt.Errorf("scoring record: %w", err)
	}
	level := s.scorer.LevelFor(score)

	factors, err := s.identifier.Identify(vector, level)
	if err != nil {
		return model.AssessmentResult{}, fmt.Errorf("identifying risk factors: %w", err)
	}

	result := model.AssessmentResult{
		Score:           score,
		Level:           level,
		Factors:         factors,
		Recommendations: s.generator.Generate(factors),
	}

	s.recordHistory(ctx, normalized, result)

	s.metrics.IncrementAssessment(string(level))
	s.metrics.ObserveAssessmentLatency(time.Since(start))
	s.logger.Info("assessment complete",
		"score", result.Score,
		"level", result.Level,
		"factors", len(result.Factors),
		"duration", time.Since(start))

	return result, nil
}

// Section returns a statute section from the reference cache.
func (s *Service) Section(id string) (model.ReferenceEntry, bool) {
	if s.refs == nil {
		return model.ReferenceEntry{}, false
	}
	return s.refs.Get(model.KindSection, id)
}

// Publication returns an IRS publication from the reference cache.
func (s *Service) Publication(id string) (model.ReferenceEntry, bool) {
	if s.refs == nil {
		return model.ReferenceEntry{}, false
	}
	return s.refs.Get(model.KindPublication, id)
}

// History returns recent assessments, newest first. Without storage
// configured it returns an empty list.
func (s *Service) History(ctx context.Context, limit int) ([]model.AssessmentRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	records, err := s.store.ListAssessments(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing assessments: %w", err)
	}
	return records, nil
}

func (s *Service) recordHistory(ctx context.Context, record model.TaxDataRecord, result model.AssessmentResult) {
	if s.store == nil {
		return
	}

	entry := model.AssessmentRecord{
		ID:          uuid.New().String(),
		AssessedAt:  time.Now().UTC(),
		TotalIncome: record.TotalIncome,
		Result:      result,
	}
	if err := s.store.SaveAssessment(ctx, &entry); err != nil {
		s.logger.Warn("failed to persist assessment history", "id", entry.ID, "error", err)
	}
}
