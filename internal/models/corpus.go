package models

import (
	"time"
)

// CorpusEntry is one previously analyzed submission. At most one active entry
// exists per submission_id; re-analysis refreshes text, fingerprint and
// timestamp in place.
type CorpusEntry struct {
	SubmissionID string    `json:"submission_id" db:"submission_id"`
	CourseID     string    `json:"course_id" db:"course_id"`
	AssignmentID string    `json:"assignment_id" db:"assignment_id"`
	AuthorID     string    `json:"author_id" db:"author_id"`
	Text         string    `json:"text" db:"text"`
	Fingerprint  string    `json:"fingerprint" db:"fingerprint"`
	WordCount    int       `json:"word_count" db:"word_count"`
	SubmittedAt  time.Time `json:"submitted_at" db:"submitted_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}
