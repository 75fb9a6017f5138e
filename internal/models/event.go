package models

import (
	"time"
)

// SubmissionCreatedEvent is published by the course platform when a student
// submits, and by the async analysis endpoint. The raw text travels in the
// event; the engine never fetches submissions itself.
type SubmissionCreatedEvent struct {
	SubmissionID string `json:"submission_id"`
	CourseID     string `json:"course_id"`
	AssignmentID string `json:"assignment_id"`
	AuthorID     string `json:"author_id"`
	Text         string `json:"text"`
	CheckedBy    string `json:"checked_by"`
	Timestamp    int64  `json:"timestamp"`
}

type AnalysisCompletedEvent struct {
	SubmissionID    string    `json:"submission_id"`
	CheckID         string    `json:"check_id"`
	Status          string    `json:"status"`
	SimilarityScore float64   `json:"similarity_score"`
	MatchedCount    int       `json:"matched_count"`
	PatternCount    int       `json:"pattern_count"`
	ProcessingTime  int       `json:"processing_time_ms"`
	CompletedAt     time.Time `json:"completed_at"`
}

type AnalysisFailedEvent struct {
	SubmissionID string    `json:"submission_id"`
	Error        string    `json:"error"`
	FailedAt     time.Time `json:"failed_at"`
}
