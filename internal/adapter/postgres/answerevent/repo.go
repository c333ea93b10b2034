// Package answerevent implements the append-only answer event repository
// using PostgreSQL. The unique constraint on (session_id, question_id) is
// surfaced as domain.ErrAlreadyExists so the service can detect replays.
package answerevent

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

// Repo provides answer event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new answer event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const eventColumns = `id, session_id, question_id, selected_option_id, is_correct, rating, time_to_answer_ms, answered_at,
	result_status, result_ease_factor, result_interval, result_repetitions, result_next_review_at`

const appendSQL = `
INSERT INTO answer_events (id, session_id, question_id, selected_option_id, is_correct, rating, time_to_answer_ms, answered_at,
	result_status, result_ease_factor, result_interval, result_repetitions, result_next_review_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const getSQL = `
SELECT ` + eventColumns + `
FROM answer_events
WHERE session_id = $1 AND question_id = $2`

const answeredSetSQL = `
SELECT question_id
FROM answer_events
WHERE session_id = $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns the event for a (session, question) pair.
// Returns domain.ErrNotFound if the question has not been answered in this
// session.
func (r *Repo) Get(ctx context.Context, sessionID, questionID uuid.UUID) (*domain.AnswerEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getSQL, sessionID, questionID)

	event, err := scanEvent(row)
	if err != nil {
		return nil, mapError(err, "answer_event", questionID)
	}

	return event, nil
}

// AnsweredSet returns the set of question ids already answered in a session.
func (r *Repo) AnsweredSet(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, answeredSetSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("answered set for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	answered := make(map[uuid.UUID]bool)
	for rows.Next() {
		var questionID uuid.UUID
		if err := rows.Scan(&questionID); err != nil {
			return nil, fmt.Errorf("answered set for session %s: %w", sessionID, err)
		}
		answered[questionID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("answered set for session %s: %w", sessionID, err)
	}

	return answered, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Append inserts a new answer event.
// Returns domain.ErrAlreadyExists if the (session, question) pair already
// has an event.
func (r *Repo) Append(ctx context.Context, event *domain.AnswerEvent) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, appendSQL,
		event.ID,
		event.SessionID,
		event.QuestionID,
		event.SelectedOptionID,
		event.IsCorrect,
		string(event.Rating),
		event.TimeToAnswerMs,
		event.AnsweredAt.UTC().Truncate(time.Microsecond),
		string(event.Progress.Status),
		event.Progress.EaseFactor,
		event.Progress.CurrentInterval,
		event.Progress.Repetitions,
		event.Progress.NextReviewAt.UTC().Truncate(time.Microsecond),
	)
	if err != nil {
		return mapError(err, "answer_event", event.ID)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

// scanEvent scans a single answer event row from pgx.Row.
func scanEvent(row pgx.Row) (*domain.AnswerEvent, error) {
	var (
		id               uuid.UUID
		sessionID        uuid.UUID
		questionID       uuid.UUID
		selectedOptionID uuid.UUID
		isCorrect        bool
		rating           string
		timeToAnswerMs   int
		answeredAt       time.Time
		resultStatus     string
		resultEase       float64
		resultInterval   int
		resultReps       int
		resultNextReview time.Time
	)

	if err := row.Scan(&id, &sessionID, &questionID, &selectedOptionID, &isCorrect, &rating, &timeToAnswerMs, &answeredAt,
		&resultStatus, &resultEase, &resultInterval, &resultReps, &resultNextReview); err != nil {
		return nil, err
	}

	return &domain.AnswerEvent{
		ID:               id,
		SessionID:        sessionID,
		QuestionID:       questionID,
		SelectedOptionID: selectedOptionID,
		IsCorrect:        isCorrect,
		Rating:           domain.PerformanceRating(rating),
		TimeToAnswerMs:   timeToAnswerMs,
		AnsweredAt:       answeredAt,
		Progress: domain.ProgressSnapshot{
			Status:          domain.ProgressStatus(resultStatus),
			EaseFactor:      resultEase,
			CurrentInterval: resultInterval,
			Repetitions:     resultReps,
			NextReviewAt:    resultNextReview,
		},
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
