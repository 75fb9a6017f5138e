package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursebridge/originality-service/internal/models"
)

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	result, err := h.analysisService.Analyze(ctx, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, result)
}

func (h *Handler) AnalyzeAsync(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	if err := h.analysisService.AnalyzeAsync(ctx, req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := map[string]interface{}{
		"submission_id": req.SubmissionID,
		"status":        models.CheckStatusPending.String(),
		"status_url":    "/api/v1/analysis/" + req.SubmissionID,
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"data":    response,
	})
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submission_id")
	if submissionID == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	ctx := r.Context()
	result, err := h.analysisService.GetResult(ctx, submissionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, result)
}
