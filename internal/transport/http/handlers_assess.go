package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/oakmere/auditflow/internal/common"
	"github.com/oakmere/auditflow/internal/model"
)

// analyzeResponse is the wire shape of an assessment. The score is a JSON
// number rounded to four decimal places; risk_factors carries factor
// descriptions in result order, factors the full objects.
type analyzeResponse struct {
	AuditRiskScore  float64            `json:"audit_risk_score"`
	RiskLevel       model.RiskLevel    `json:"risk_level"`
	RiskFactors     []string           `json:"risk_factors"`
	Factors         []model.RiskFactor `json:"factors"`
	Recommendations []string           `json:"recommendations"`
}

func newAnalyzeResponse(result model.AssessmentResult) analyzeResponse {
	resp := analyzeResponse{
		AuditRiskScore:  result.Score.Round(4).InexactFloat64(),
		RiskLevel:       result.Level,
		RiskFactors:     result.Factors.Descriptions(),
		Factors:         result.Factors,
		Recommendations: result.Recommendations,
	}
	if resp.Factors == nil {
		resp.Factors = []model.RiskFactor{}
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []string{}
	}
	return resp
}

// handleAnalyze handles POST /api/analyze.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)
	start := time.Now()

	var record model.TaxDataRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		h.logger.Warn("invalid analyze request body",
			"request_id", requestID, "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.assessor.Analyze(ctx, record)
	if err != nil {
		var vErr *common.ValidationError
		if errors.As(err, &vErr) {
			h.logger.Warn("analyze request rejected",
				"request_id", requestID, "field", vErr.Field, "reason", vErr.Reason)
			writeFieldError(w, http.StatusBadRequest, vErr.Error(), vErr.Field)
			return
		}
		h.logger.Error("assessment failed",
			"request_id", requestID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.logger.Info("analyze complete",
		"request_id", requestID,
		"level", result.Level,
		"factors", len(result.Factors),
		"duration_ms", time.Since(start).Milliseconds())

	writeJSON(w, http.StatusOK, newAnalyzeResponse(result))
}

// handleListAssessments handles GET /api/assessments?limit=N.
func (h *Handler) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeFieldError(w, http.StatusBadRequest, "limit must be a non-negative integer", "limit")
			return
		}
		limit = parsed
	}

	records, err := h.assessor.History(ctx, limit)
	if err != nil {
		h.logger.Error("failed to list assessments",
			"request_id", middleware.GetReqID(ctx), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []model.AssessmentRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"assessments": records})
}
