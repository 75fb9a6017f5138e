package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursebridge/originality-service/internal/models"
)

func (h *Handler) SearchChecks(w http.ResponseWriter, r *http.Request) {
	req := models.SearchChecksRequest{
		CourseID:     getStringQueryParam(r, "course_id"),
		AssignmentID: getStringQueryParam(r, "assignment_id"),
		AuthorID:     getStringQueryParam(r, "author_id"),
		Status:       getStringQueryParam(r, "status"),
		Page:         getIntQueryParam(r, "page", 1),
		Limit:        getIntQueryParam(r, "limit", 20),
	}

	ctx := r.Context()
	response, err := h.checkService.SearchChecks(ctx, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) GetAssignmentSummary(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "assignment_id")
	if assignmentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID is required")
		return
	}

	ctx := r.Context()
	summary, err := h.checkService.GetAssignmentSummary(ctx, assignmentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, summary)
}

func (h *Handler) DeactivateCorpusEntry(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submission_id")
	if submissionID == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	ctx := r.Context()
	if err := h.analysisService.DeactivateCorpusEntry(ctx, submissionID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"submission_id": submissionID,
		"is_active":     false,
	})
}
