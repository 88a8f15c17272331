// Package httptransport is the thin HTTP layer over the assessment and
// reference services. Handlers decode, delegate, and encode; business
// logic stays in the domain packages.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oakmere/auditflow/internal/model"
	"github.com/oakmere/auditflow/internal/service"
)

// ReferenceSource is the slice of the cache the transport needs: lookups,
// the freshness window, and activity counters for the health endpoint.
type ReferenceSource interface {
	Get(kind model.ReferenceKind, id string) (model.ReferenceEntry, bool)
	TTL() time.Duration
	Stats() service.CacheStats
}

// Handler wires the API endpoints to their backing services.
type Handler struct {
	assessor service.Assessor
	refs     ReferenceSource
	logger   *slog.Logger
}

// NewHandler constructs the HTTP handler. The reference source may be nil
// when the server runs without a cache; reference routes then return 404.
func NewHandler(assessor service.Assessor, refs ReferenceSource, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		assessor: assessor,
		refs:     refs,
		logger:   logger.With("component", "http"),
	}
}

// Routes builds the router with the standard middleware chain.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", h.handleAnalyze)
		r.Get("/assessments", h.handleListAssessments)
		r.Route("/reference", func(r chi.Router) {
			r.Get("/sections/{id}", h.handleReference(model.KindSection))
			r.Get("/publications/{id}", h.handleReference(model.KindPublication))
		})
	})

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
