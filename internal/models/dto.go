package models

import "time"

// Data Transfer Objects

type AnalyzeRequest struct {
	SubmissionID string `json:"submission_id" validate:"required"`
	CourseID     string `json:"course_id" validate:"required"`
	AssignmentID string `json:"assignment_id" validate:"required"`
	AuthorID     string `json:"author_id" validate:"required"`
	Text         string `json:"text"`
	CheckedBy    string `json:"checked_by"`
}

// AnalysisEnvelope is the engine's result as returned to the host system.
type AnalysisEnvelope struct {
	SubmissionID       string              `json:"submission_id"`
	SimilarityScore    float64             `json:"similarity_score"`
	MatchedSources     []MatchedSource     `json:"matched_sources"`
	SuspiciousPatterns []SuspiciousPattern `json:"suspicious_patterns"`
	AnalysisResult     *TextStatistics     `json:"analysis_result,omitempty"`
	Status             string              `json:"status"`
	ErrorMessage       *string             `json:"error_message,omitempty"`
	CheckedBy          string              `json:"checked_by,omitempty"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty"`
}

type SearchChecksRequest struct {
	CourseID     *string `json:"course_id,omitempty"`
	AssignmentID *string `json:"assignment_id,omitempty"`
	AuthorID     *string `json:"author_id,omitempty"`
	Status       *string `json:"status,omitempty"`
	Page         int     `json:"page" validate:"min=1"`
	Limit        int     `json:"limit" validate:"min=1,max=100"`
}

type SearchChecksResponse struct {
	Checks     []AnalysisCheck `json:"checks"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type AssignmentSummary struct {
	AssignmentID    string     `json:"assignment_id"`
	TotalChecks     int        `json:"total_checks"`
	CompletedChecks int        `json:"completed_checks"`
	FailedChecks    int        `json:"failed_checks"`
	FlaggedChecks   int        `json:"flagged_checks"`
	AvgScore        float64    `json:"avg_score"`
	LastCheckedAt   *time.Time `json:"last_checked_at,omitempty"`
}

type ServiceStatusResponse struct {
	Status        string    `json:"status"`
	Database      bool      `json:"database"`
	RabbitMQ      bool      `json:"rabbitmq"`
	ActiveWorkers int       `json:"active_workers"`
	QueueLength   int       `json:"queue_length"`
	Timestamp     time.Time `json:"timestamp"`
}
