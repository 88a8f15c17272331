package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oakmere/auditflow/internal/model"
)

// handleReference serves GET /api/reference/{kind}/{id}. A hit reports
// its freshness through the X-Reference-State header; a miss returns 404
// while the cache loads the entry in the background.
func (h *Handler) handleReference(kind model.ReferenceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if h.refs == nil {
			writeError(w, http.StatusNotFound, "reference data not available")
			return
		}

		entry, ok := h.refs.Get(kind, id)
		if !ok {
			writeError(w, http.StatusNotFound, "reference not found")
			return
		}

		state := "fresh"
		if !entry.FreshAt(time.Now(), h.refs.TTL()) {
			state = "stale"
		}
		w.Header().Set("X-Reference-State", state)
		writeJSON(w, http.StatusOK, entry)
	}
}

// handleHealth handles GET /healthz.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"status": "ok"}
	if h.refs != nil {
		payload["reference_entries"] = h.refs.Stats().Entries
	}
	writeJSON(w, http.StatusOK, payload)
}
