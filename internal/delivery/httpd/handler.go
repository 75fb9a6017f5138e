package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/coursebridge/originality-service/internal/service"
)

type Handler struct {
	analysisService service.AnalysisService
	checkService    service.CheckService
	logger          zerolog.Logger
}

func NewHandler(
	analysisService service.AnalysisService,
	checkService service.CheckService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		analysisService: analysisService,
		checkService:    checkService,
		logger:          logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	// Health check
	router.Get("/health", h.HealthCheck)
	router.Get("/status", h.GetServiceStatus)

	// Versioned API
	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/analysis", func(r chi.Router) {
			r.Post("/", h.Analyze)
			r.Post("/async", h.AnalyzeAsync)
			r.Get("/{submission_id}", h.GetResult)
		})

		api.Route("/checks", func(r chi.Router) {
			r.Get("/", h.SearchChecks)
			r.Get("/assignment/{assignment_id}", h.GetAssignmentSummary)
		})

		api.Route("/corpus", func(r chi.Router) {
			r.Delete("/{submission_id}", h.DeactivateCorpusEntry)
		})
	})
}

// handleServiceError maps service sentinel errors onto HTTP status codes.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingSubmissionID),
		errors.Is(err, service.ErrMissingScope):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCheckNotFound),
		errors.Is(err, service.ErrCorpusEntryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAnalysisInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStoreFailure):
		h.logger.Error().Err(err).Msg("Store failure")
		writeError(w, http.StatusServiceUnavailable, "Corpus store unavailable")
	default:
		h.logger.Error().Err(err).Msg("Analysis error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getStringQueryParam(r *http.Request, key string) *string {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil
	}
	return &value
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
