package service

import "errors"

// Typed errors so the delivery layer can map failures onto HTTP codes
// without matching on message strings.
var (
	// Validation errors.
	ErrMissingSubmissionID = errors.New("submission_id is required")
	ErrMissingScope        = errors.New("course_id, assignment_id and author_id are required")
	ErrAnalysisInProgress  = errors.New("analysis already in progress for this submission")

	// Read-path errors.
	ErrCheckNotFound       = errors.New("analysis not found for this submission")
	ErrCorpusEntryNotFound = errors.New("corpus entry not found")

	// External dependency errors. Store failures mark the check failed and
	// are rethrown to the caller; retrying is the caller's call.
	ErrStoreFailure = errors.New("corpus store failure")
)
