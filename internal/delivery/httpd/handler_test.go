package httpd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/coursebridge/originality-service/internal/models"
	"github.com/coursebridge/originality-service/internal/service"
)

type stubAnalysisService struct {
	analyzeErr    error
	result        *models.AnalysisEnvelope
	deactivateErr error
}

func (s *stubAnalysisService) Analyze(_ context.Context, req models.AnalyzeRequest) (*models.AnalysisEnvelope, error) {
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	if s.result != nil {
		return s.result, nil
	}
	return &models.AnalysisEnvelope{
		SubmissionID: req.SubmissionID,
		Status:       models.CheckStatusCompleted.String(),
	}, nil
}

func (s *stubAnalysisService) AnalyzeAsync(_ context.Context, _ models.AnalyzeRequest) error {
	return s.analyzeErr
}

func (s *stubAnalysisService) GetResult(_ context.Context, submissionID string) (*models.AnalysisEnvelope, error) {
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	return &models.AnalysisEnvelope{SubmissionID: submissionID}, nil
}

func (s *stubAnalysisService) DeactivateCorpusEntry(_ context.Context, _ string) error {
	return s.deactivateErr
}

type stubCheckService struct{}

func (s *stubCheckService) SearchChecks(_ context.Context, req models.SearchChecksRequest) (*models.SearchChecksResponse, error) {
	return &models.SearchChecksResponse{Page: req.Page, Limit: req.Limit}, nil
}

func (s *stubCheckService) GetAssignmentSummary(_ context.Context, assignmentID string) (*models.AssignmentSummary, error) {
	return &models.AssignmentSummary{AssignmentID: assignmentID}, nil
}

func (s *stubCheckService) GetServiceStatus(_ context.Context) (*models.ServiceStatusResponse, error) {
	return &models.ServiceStatusResponse{Status: "ok", Database: true}, nil
}

func newTestRouter(analysisSvc service.AnalysisService) *chi.Mux {
	handler := NewHandler(analysisSvc, &stubCheckService{}, zerolog.Nop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := newTestRouter(&stubAnalysisService{})

	body := `{"submission_id":"sub-1","course_id":"c1","assignment_id":"a1","author_id":"u1","text":"essay"}`
	rec := doRequest(t, router, http.MethodPost, "/api/v1/analysis/", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Success bool                    `json:"success"`
		Data    models.AnalysisEnvelope `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if !resp.Success || resp.Data.SubmissionID != "sub-1" {
		t.Errorf("response = %+v, want successful envelope for sub-1", resp)
	}
}

func TestAnalyzeEndpointRejectsBadBody(t *testing.T) {
	router := newTestRouter(&stubAnalysisService{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/analysis/", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeAsyncEndpointAccepted(t *testing.T) {
	router := newTestRouter(&stubAnalysisService{})

	body := `{"submission_id":"sub-1","course_id":"c1","assignment_id":"a1","author_id":"u1","text":"essay"}`
	rec := doRequest(t, router, http.MethodPost, "/api/v1/analysis/async", body)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	var resp struct {
		Data struct {
			Status    string `json:"status"`
			StatusURL string `json:"status_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if resp.Data.Status != models.CheckStatusPending.String() {
		t.Errorf("status = %s, want pending", resp.Data.Status)
	}
	if resp.Data.StatusURL != "/api/v1/analysis/sub-1" {
		t.Errorf("status_url = %s, want /api/v1/analysis/sub-1", resp.Data.StatusURL)
	}
}

func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing submission id", service.ErrMissingSubmissionID, http.StatusBadRequest},
		{"missing scope", service.ErrMissingScope, http.StatusBadRequest},
		{"not found", service.ErrCheckNotFound, http.StatusNotFound},
		{"in progress", service.ErrAnalysisInProgress, http.StatusConflict},
		{"store failure", service.ErrStoreFailure, http.StatusServiceUnavailable},
	}
	body := `{"submission_id":"sub-1"}`
	for _, c := range cases {
		router := newTestRouter(&stubAnalysisService{analyzeErr: c.err})
		rec := doRequest(t, router, http.MethodPost, "/api/v1/analysis/", body)
		if rec.Code != c.wantStatus {
			t.Errorf("%s: status = %d, want %d", c.name, rec.Code, c.wantStatus)
		}
	}
}

func TestGetResultEndpoint(t *testing.T) {
	router := newTestRouter(&stubAnalysisService{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/analysis/sub-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	router = newTestRouter(&stubAnalysisService{analyzeErr: service.ErrCheckNotFound})
	rec = doRequest(t, router, http.MethodGet, "/api/v1/analysis/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeactivateCorpusEndpoint(t *testing.T) {
	router := newTestRouter(&stubAnalysisService{})
	rec := doRequest(t, router, http.MethodDelete, "/api/v1/corpus/sub-1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	router = newTestRouter(&stubAnalysisService{deactivateErr: service.ErrCorpusEntryNotFound})
	rec = doRequest(t, router, http.MethodDelete, "/api/v1/corpus/sub-1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubAnalysisService{})

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", resp["status"])
	}
}

func TestSearchChecksEndpointDefaults(t *testing.T) {
	router := newTestRouter(&stubAnalysisService{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/checks/?page=2&limit=25", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Data models.SearchChecksResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response does not decode: %v", err)
	}
	if resp.Data.Page != 2 || resp.Data.Limit != 25 {
		t.Errorf("page/limit = %d/%d, want 2/25", resp.Data.Page, resp.Data.Limit)
	}
}
