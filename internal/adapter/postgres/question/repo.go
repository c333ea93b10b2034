// Package question implements the question repository using PostgreSQL.
// A question row and its option rows are read in two queries; the option
// set is small and bounded so no join plumbing is worth the complexity.
package question

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

// Repo provides question persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new question repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// SQL constants
// ---------------------------------------------------------------------------

const questionColumns = `id, question_text, explanation, difficulty, times_asked, times_correct, avg_time_to_answer, created_at, updated_at`

const getByIDSQL = `
SELECT ` + questionColumns + `
FROM questions
WHERE id = $1`

const getOptionsSQL = `
SELECT id, question_id, option_text, is_correct
FROM question_options
WHERE question_id = $1
ORDER BY id`

// incrementStatsSQL applies one answer as a delta so that concurrent
// submissions for the same question never lose an update. The average is
// a running mean; after more than ten recorded answers the difficulty
// label is recomputed from accuracy (>= 0.8 easy, >= 0.5 medium,
// otherwise hard).
const incrementStatsSQL = `
UPDATE questions
SET times_asked = times_asked + 1,
    times_correct = times_correct + ($2)::int,
    avg_time_to_answer = COALESCE(avg_time_to_answer, 0)
        + ($3 - COALESCE(avg_time_to_answer, 0)) / (times_asked + 1),
    difficulty = CASE
        WHEN times_asked + 1 > 10 THEN CASE
            WHEN (times_correct + ($2)::int)::float / (times_asked + 1) >= 0.8 THEN 'easy'
            WHEN (times_correct + ($2)::int)::float / (times_asked + 1) >= 0.5 THEN 'medium'
            ELSE 'hard'
        END
        ELSE difficulty
    END,
    updated_at = now()
WHERE id = $1`

const countUnseenSQL = `
SELECT count(*)
FROM questions q
WHERE NOT EXISTS (
    SELECT 1 FROM user_question_progress p
    WHERE p.user_id = $1 AND p.question_id = q.id
)`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a question with its options.
// Returns domain.ErrNotFound if the question does not exist.
func (r *Repo) GetByID(ctx context.Context, questionID uuid.UUID) (*domain.Question, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, questionID)

	question, err := scanQuestion(row)
	if err != nil {
		return nil, mapError(err, "question", questionID)
	}

	rows, err := querier.Query(ctx, getOptionsSQL, questionID)
	if err != nil {
		return nil, fmt.Errorf("question %s: get options: %w", questionID, err)
	}
	defer rows.Close()

	options, err := scanOptions(rows)
	if err != nil {
		return nil, fmt.Errorf("question %s: scan options: %w", questionID, err)
	}
	question.Options = options

	return question, nil
}

// CountUnseen returns the number of questions the user has no progress
// record for.
func (r *Repo) CountUnseen(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countUnseenSQL, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unseen questions: %w", err)
	}

	return count, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// IncrementStats folds one answer into the question's aggregate counters.
// The whole update happens in a single self-relative statement, so callers
// never pass absolute values and stale reads cannot clobber each other.
// Returns domain.ErrNotFound if the question does not exist.
func (r *Repo) IncrementStats(ctx context.Context, questionID uuid.UUID, correct bool, timeToAnswerMs int) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ct, err := querier.Exec(ctx, incrementStatsSQL, questionID, correct, timeToAnswerMs)
	if err != nil {
		return mapError(err, "question", questionID)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("question %s: %w", questionID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

// scanQuestion scans a single question row from pgx.Row.
func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var (
		id              uuid.UUID
		text            string
		explanation     string
		difficulty      string
		timesAsked      int
		timesCorrect    int
		avgTimeToAnswer *int
		createdAt       time.Time
		updatedAt       time.Time
	)

	if err := row.Scan(&id, &text, &explanation, &difficulty, &timesAsked, &timesCorrect, &avgTimeToAnswer, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return &domain.Question{
		ID:              id,
		Text:            text,
		Explanation:     explanation,
		Difficulty:      domain.QuestionDifficulty(difficulty),
		TimesAsked:      timesAsked,
		TimesCorrect:    timesCorrect,
		AvgTimeToAnswer: avgTimeToAnswer,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}, nil
}

// scanOptions scans option rows from pgx.Rows.
func scanOptions(rows pgx.Rows) ([]domain.Option, error) {
	var options []domain.Option
	for rows.Next() {
		var o domain.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return options, nil
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
