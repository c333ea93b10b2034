// Package progress implements the per-user question progress repository
// using PostgreSQL. The table is keyed by (user_id, question_id) and every
// write goes through an upsert, so the repository has no separate create.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/medrecall/quizdeck-backend/internal/adapter/postgres"
	"github.com/medrecall/quizdeck-backend/internal/domain"
)

// Repo provides progress record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new progress repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const progressColumns = `user_id, question_id, status, ease_factor, current_interval, repetitions, next_review_at, last_reviewed_at`

const getSQL = `
SELECT ` + progressColumns + `
FROM user_question_progress
WHERE user_id = $1 AND question_id = $2`

const upsertSQL = `
INSERT INTO user_question_progress (user_id, question_id, status, ease_factor, current_interval, repetitions, next_review_at, last_reviewed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id, question_id) DO UPDATE SET
    status = EXCLUDED.status,
    ease_factor = EXCLUDED.ease_factor,
    current_interval = EXCLUDED.current_interval,
    repetitions = EXCLUDED.repetitions,
    next_review_at = EXCLUDED.next_review_at,
    last_reviewed_at = EXCLUDED.last_reviewed_at`

const countDueSQL = `
SELECT count(*)
FROM user_question_progress
WHERE user_id = $1 AND next_review_at <= $2`

const countByStatusSQL = `
SELECT count(*)
FROM user_question_progress
WHERE user_id = $1 AND status = $2`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns the progress record for a (user, question) pair.
// Returns domain.ErrNotFound if the user has never answered the question.
func (r *Repo) Get(ctx context.Context, userID, questionID uuid.UUID) (*domain.ProgressRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getSQL, userID, questionID)

	record, err := scanRecord(row)
	if err != nil {
		return nil, mapError(err, "progress", questionID)
	}

	return record, nil
}

// CountDue returns the number of records with next_review_at at or before
// the given instant.
func (r *Repo) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countDueSQL, userID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("count due progress: %w", err)
	}

	return count, nil
}

// CountByStatus returns the number of records in the given status.
func (r *Repo) CountByStatus(ctx context.Context, userID uuid.UUID, status domain.ProgressStatus) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countByStatusSQL, userID, string(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count progress by status: %w", err)
	}

	return count, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Upsert inserts or fully replaces the progress record for its
// (user, question) pair.
func (r *Repo) Upsert(ctx context.Context, record *domain.ProgressRecord) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var lastReviewedAt *time.Time
	if record.LastReviewedAt != nil {
		t := record.LastReviewedAt.UTC().Truncate(time.Microsecond)
		lastReviewedAt = &t
	}

	_, err := querier.Exec(ctx, upsertSQL,
		record.UserID,
		record.QuestionID,
		string(record.Status),
		record.EaseFactor,
		record.CurrentInterval,
		record.Repetitions,
		record.NextReviewAt.UTC().Truncate(time.Microsecond),
		lastReviewedAt,
	)
	if err != nil {
		return mapError(err, "progress", record.QuestionID)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

// scanRecord scans a single progress row from pgx.Row.
func scanRecord(row pgx.Row) (*domain.ProgressRecord, error) {
	var (
		userID          uuid.UUID
		questionID      uuid.UUID
		status          string
		easeFactor      float64
		currentInterval int
		repetitions     int
		nextReviewAt    time.Time
		lastReviewedAt  *time.Time
	)

	if err := row.Scan(&userID, &questionID, &status, &easeFactor, &currentInterval, &repetitions, &nextReviewAt, &lastReviewedAt); err != nil {
		return nil, err
	}

	return &domain.ProgressRecord{
		UserID:          userID,
		QuestionID:      questionID,
		Status:          domain.ProgressStatus(status),
		EaseFactor:      easeFactor,
		CurrentInterval: currentInterval,
		Repetitions:     repetitions,
		NextReviewAt:    nextReviewAt,
		LastReviewedAt:  lastReviewedAt,
	}, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
