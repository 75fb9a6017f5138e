package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursebridge/originality-service/internal/models"
)

type CheckRepository interface {
	GetBySubmissionID(ctx context.Context, submissionID string) (*models.AnalysisCheck, error)
	// StartProcessing creates the check record for a submission or resets an
	// existing terminal record back into the processing state. One row per
	// submission_id, always.
	StartProcessing(ctx context.Context, check *models.AnalysisCheck) error
	// Complete writes the terminal completed state with all derived fields.
	Complete(ctx context.Context, check *models.AnalysisCheck) error
	// Fail writes the terminal failed state with the diagnostic message.
	Fail(ctx context.Context, submissionID, message string) error
	Search(ctx context.Context, req models.SearchChecksRequest) ([]models.AnalysisCheck, int, error)
	GetAssignmentSummary(ctx context.Context, assignmentID string, flagThreshold float64) (*models.AssignmentSummary, error)
	Ping(ctx context.Context) error
}

type checkRepository struct {
	*PostgresRepository
}

func NewCheckRepository(db *sql.DB, logger zerolog.Logger) CheckRepository {
	return &checkRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const checkColumns = `
	id, submission_id, course_id, assignment_id, author_id, status,
	similarity_score, matched_sources, suspicious_patterns, statistics,
	error_message, checked_by, created_at, started_at, completed_at, updated_at
`

func (r *checkRepository) GetBySubmissionID(ctx context.Context, submissionID string) (*models.AnalysisCheck, error) {
	query := `SELECT ` + checkColumns + ` FROM analysis_checks WHERE submission_id = $1`

	row := r.db.QueryRowContext(ctx, query, submissionID)
	check, err := scanCheck(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return check, nil
}

func (r *checkRepository) StartProcessing(ctx context.Context, check *models.AnalysisCheck) error {
	query := `
		INSERT INTO analysis_checks (
			id, submission_id, course_id, assignment_id, author_id, status,
			similarity_score, checked_by, created_at, started_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $10)
		ON CONFLICT (submission_id) DO UPDATE
		SET
			course_id = EXCLUDED.course_id,
			assignment_id = EXCLUDED.assignment_id,
			author_id = EXCLUDED.author_id,
			status = EXCLUDED.status,
			similarity_score = 0,
			matched_sources = NULL,
			suspicious_patterns = NULL,
			statistics = NULL,
			error_message = NULL,
			checked_by = EXCLUDED.checked_by,
			started_at = EXCLUDED.started_at,
			completed_at = NULL,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		check.ID,
		check.SubmissionID,
		check.CourseID,
		check.AssignmentID,
		check.AuthorID,
		check.Status,
		check.CheckedBy,
		check.CreatedAt,
		check.StartedAt,
		now,
	)

	return err
}

func (r *checkRepository) Complete(ctx context.Context, check *models.AnalysisCheck) error {
	sources, err := json.Marshal(check.MatchedSources)
	if err != nil {
		return fmt.Errorf("failed to marshal matched sources: %w", err)
	}
	patterns, err := json.Marshal(check.SuspiciousPatterns)
	if err != nil {
		return fmt.Errorf("failed to marshal suspicious patterns: %w", err)
	}
	stats, err := json.Marshal(check.Statistics)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}

	query := `
		UPDATE analysis_checks
		SET
			status = $1,
			similarity_score = $2,
			matched_sources = $3,
			suspicious_patterns = $4,
			statistics = $5,
			error_message = NULL,
			completed_at = $6,
			updated_at = $7
		WHERE submission_id = $8
	`

	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		models.CheckStatusCompleted.String(),
		check.SimilarityScore,
		sources,
		patterns,
		stats,
		check.CompletedAt,
		now,
		check.SubmissionID,
	)

	return err
}

func (r *checkRepository) Fail(ctx context.Context, submissionID, message string) error {
	query := `
		UPDATE analysis_checks
		SET
			status = $1,
			error_message = $2,
			completed_at = $3,
			updated_at = $3
		WHERE submission_id = $4
	`

	_, err := r.db.ExecContext(ctx, query,
		models.CheckStatusFailed.String(),
		message,
		time.Now(),
		submissionID,
	)

	return err
}

func (r *checkRepository) Search(ctx context.Context, req models.SearchChecksRequest) ([]models.AnalysisCheck, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argN := 1

	addFilter := func(column string, value *string) {
		if value != nil && *value != "" {
			where += fmt.Sprintf(" AND %s = $%d", column, argN)
			args = append(args, *value)
			argN++
		}
	}
	addFilter("course_id", req.CourseID)
	addFilter("assignment_id", req.AssignmentID)
	addFilter("author_id", req.AuthorID)
	addFilter("status", req.Status)

	countQuery := `SELECT COUNT(*) FROM analysis_checks ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + checkColumns + ` FROM analysis_checks ` + where +
		fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, req.Limit, (req.Page-1)*req.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var checks []models.AnalysisCheck
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, 0, err
		}
		checks = append(checks, *check)
	}

	return checks, total, rows.Err()
}

func (r *checkRepository) GetAssignmentSummary(ctx context.Context, assignmentID string, flagThreshold float64) (*models.AssignmentSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*) FILTER (WHERE status = 'completed' AND similarity_score >= $2),
			COALESCE(AVG(similarity_score) FILTER (WHERE status = 'completed'), 0),
			MAX(completed_at)
		FROM analysis_checks
		WHERE assignment_id = $1
	`

	summary := &models.AssignmentSummary{AssignmentID: assignmentID}
	var lastCheckedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, assignmentID, flagThreshold).Scan(
		&summary.TotalChecks,
		&summary.CompletedChecks,
		&summary.FailedChecks,
		&summary.FlaggedChecks,
		&summary.AvgScore,
		&lastCheckedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastCheckedAt.Valid {
		summary.LastCheckedAt = &lastCheckedAt.Time
	}

	return summary, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCheck(row rowScanner) (*models.AnalysisCheck, error) {
	check := &models.AnalysisCheck{}
	var sources, patterns, stats []byte
	var errorMessage sql.NullString

	err := row.Scan(
		&check.ID,
		&check.SubmissionID,
		&check.CourseID,
		&check.AssignmentID,
		&check.AuthorID,
		&check.Status,
		&check.SimilarityScore,
		&sources,
		&patterns,
		&stats,
		&errorMessage,
		&check.CheckedBy,
		&check.CreatedAt,
		&check.StartedAt,
		&check.CompletedAt,
		&check.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if errorMessage.Valid {
		check.ErrorMessage = &errorMessage.String
	}
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &check.MatchedSources); err != nil {
			return nil, fmt.Errorf("failed to unmarshal matched sources: %w", err)
		}
	}
	if len(patterns) > 0 {
		if err := json.Unmarshal(patterns, &check.SuspiciousPatterns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal suspicious patterns: %w", err)
		}
	}
	if len(stats) > 0 {
		if err := json.Unmarshal(stats, &check.Statistics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal statistics: %w", err)
		}
	}

	return check, nil
}
