package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/coursebridge/originality-service/internal/models"
)

type CorpusRepository interface {
	// FindCandidates returns the active corpus entries for one course +
	// assignment, excluding the current author's own prior work. No ordering
	// is guaranteed; the matcher sorts downstream.
	FindCandidates(ctx context.Context, courseID, assignmentID, excludeAuthorID string) ([]models.CorpusEntry, error)
	// Upsert inserts the entry or refreshes text, fingerprint, word count and
	// timestamp for an existing submission_id.
	Upsert(ctx context.Context, entry *models.CorpusEntry) error
	GetBySubmissionID(ctx context.Context, submissionID string) (*models.CorpusEntry, error)
	Deactivate(ctx context.Context, submissionID string) error
}

type corpusRepository struct {
	*PostgresRepository
}

func NewCorpusRepository(db *sql.DB, logger zerolog.Logger) CorpusRepository {
	return &corpusRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *corpusRepository) FindCandidates(ctx context.Context, courseID, assignmentID, excludeAuthorID string) ([]models.CorpusEntry, error) {
	query := `
		SELECT
			submission_id, course_id, assignment_id, author_id,
			text, fingerprint, word_count, submitted_at, is_active
		FROM corpus_entries
		WHERE course_id = $1
			AND assignment_id = $2
			AND author_id != $3
			AND is_active = TRUE
	`

	rows, err := r.db.QueryContext(ctx, query, courseID, assignmentID, excludeAuthorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.CorpusEntry
	for rows.Next() {
		var entry models.CorpusEntry
		err := rows.Scan(
			&entry.SubmissionID,
			&entry.CourseID,
			&entry.AssignmentID,
			&entry.AuthorID,
			&entry.Text,
			&entry.Fingerprint,
			&entry.WordCount,
			&entry.SubmittedAt,
			&entry.IsActive,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *corpusRepository) Upsert(ctx context.Context, entry *models.CorpusEntry) error {
	query := `
		INSERT INTO corpus_entries (
			submission_id, course_id, assignment_id, author_id,
			text, fingerprint, word_count, submitted_at, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT (submission_id) DO UPDATE
		SET
			course_id = EXCLUDED.course_id,
			assignment_id = EXCLUDED.assignment_id,
			author_id = EXCLUDED.author_id,
			text = EXCLUDED.text,
			fingerprint = EXCLUDED.fingerprint,
			word_count = EXCLUDED.word_count,
			submitted_at = EXCLUDED.submitted_at,
			is_active = TRUE
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.SubmissionID,
		entry.CourseID,
		entry.AssignmentID,
		entry.AuthorID,
		entry.Text,
		entry.Fingerprint,
		entry.WordCount,
		entry.SubmittedAt,
	)

	return err
}

func (r *corpusRepository) GetBySubmissionID(ctx context.Context, submissionID string) (*models.CorpusEntry, error) {
	query := `
		SELECT
			submission_id, course_id, assignment_id, author_id,
			text, fingerprint, word_count, submitted_at, is_active
		FROM corpus_entries
		WHERE submission_id = $1
	`

	var entry models.CorpusEntry
	err := r.db.QueryRowContext(ctx, query, submissionID).Scan(
		&entry.SubmissionID,
		&entry.CourseID,
		&entry.AssignmentID,
		&entry.AuthorID,
		&entry.Text,
		&entry.Fingerprint,
		&entry.WordCount,
		&entry.SubmittedAt,
		&entry.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &entry, nil
}

func (r *corpusRepository) Deactivate(ctx context.Context, submissionID string) error {
	query := `
		UPDATE corpus_entries
		SET is_active = FALSE
		WHERE submission_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, submissionID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
