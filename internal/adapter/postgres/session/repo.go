// Package session implements the quiz session repository using PostgreSQL.
// The frozen question list is stored as a UUID array on the session row, so
// reads never need a join to reconstruct the original ordering.
package session

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

// Repo provides quiz session persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new session repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const sessionColumns = `id, user_id, session_type, question_ids, created_at, completed_at`

const createSQL = `
INSERT INTO quiz_sessions (id, user_id, session_type, question_ids, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + sessionColumns

const getByIDSQL = `
SELECT ` + sessionColumns + `
FROM quiz_sessions
WHERE id = $1`

const getActiveSQL = `
SELECT ` + sessionColumns + `
FROM quiz_sessions
WHERE user_id = $1 AND completed_at IS NULL
ORDER BY created_at DESC
LIMIT 1`

const completeSQL = `
UPDATE quiz_sessions
SET completed_at = $2
WHERE id = $1 AND completed_at IS NULL`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a session by primary key. Ownership is not filtered here;
// the service layer decides between not-found and access-denied.
func (r *Repo) GetByID(ctx context.Context, sessionID uuid.UUID) (*domain.QuizSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, sessionID)

	session, err := scanSession(row)
	if err != nil {
		return nil, mapError(err, "quiz_session", sessionID)
	}

	return session, nil
}

// GetActive returns the user's most recent uncompleted session.
// Returns domain.ErrNotFound if every session has been completed.
func (r *Repo) GetActive(ctx context.Context, userID uuid.UUID) (*domain.QuizSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getActiveSQL, userID)

	session, err := scanSession(row)
	if err != nil {
		return nil, mapError(err, "quiz_session", uuid.Nil)
	}

	return session, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new quiz session and returns the persisted row.
func (r *Repo) Create(ctx context.Context, session *domain.QuizSession) (*domain.QuizSession, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	createdAt := session.CreatedAt.UTC().Truncate(time.Microsecond)

	row := querier.QueryRow(ctx, createSQL,
		session.ID,
		session.UserID,
		string(session.Type),
		session.QuestionIDs,
		createdAt,
	)

	created, err := scanSession(row)
	if err != nil {
		return nil, mapError(err, "quiz_session", session.ID)
	}

	return created, nil
}

// Complete sets completed_at on a still-open session. The update is
// conditional on completed_at being NULL, so concurrent callers cannot
// complete the same session twice: exactly one sees true.
func (r *Repo) Complete(ctx context.Context, sessionID uuid.UUID, completedAt time.Time) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, completeSQL, sessionID, completedAt.UTC().Truncate(time.Microsecond))
	if err != nil {
		return false, mapError(err, "quiz_session", sessionID)
	}

	return ct.RowsAffected() > 0, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

// scanSession scans a single session row from pgx.Row.
func scanSession(row pgx.Row) (*domain.QuizSession, error) {
	var (
		id          uuid.UUID
		userID      uuid.UUID
		sessionType string
		questionIDs []uuid.UUID
		createdAt   time.Time
		completedAt *time.Time
	)

	if err := row.Scan(&id, &userID, &sessionType, &questionIDs, &createdAt, &completedAt); err != nil {
		return nil, err
	}

	return &domain.QuizSession{
		ID:          id,
		UserID:      userID,
		Type:        domain.SessionType(sessionType),
		QuestionIDs: questionIDs,
		CreatedAt:   createdAt,
		CompletedAt: completedAt,
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
