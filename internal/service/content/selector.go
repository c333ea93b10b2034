// Package content selects the question pool for new quiz sessions.
// Selection is a read-only query concern, so the selector talks to the
// database directly instead of going through the per-aggregate repos.
package content

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres"
)

// psql builds queries with PostgreSQL $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Selector implements the quiz service's content selection: which questions
// go into a new session, in what order.
type Selector struct {
	pool *pgxpool.Pool
}

// NewSelector creates a new content selector.
func NewSelector(pool *pgxpool.Pool) *Selector {
	return &Selector{pool: pool}
}

// SelectNew returns up to limit question ids the user has never answered,
// oldest first. An optional tag narrows the pool.
func (s *Selector) SelectNew(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, limit int) ([]uuid.UUID, error) {
	query := psql.Select("q.id").
		From("questions q").
		Where("NOT EXISTS (SELECT 1 FROM user_question_progress p WHERE p.user_id = ? AND p.question_id = q.id)", userID).
		OrderBy("q.created_at ASC", "q.id ASC").
		Limit(uint64(limit))

	query = withTagFilter(query, tagID)

	ids, err := s.queryIDs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select new questions: %w", err)
	}
	return ids, nil
}

// SelectDue returns up to limit question ids whose next review is at or
// before now, most overdue first. An optional tag narrows the pool.
func (s *Selector) SelectDue(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error) {
	query := psql.Select("q.id").
		From("questions q").
		Join("user_question_progress p ON p.question_id = q.id").
		Where(squirrel.Eq{"p.user_id": userID}).
		Where(squirrel.LtOrEq{"p.next_review_at": now}).
		OrderBy("p.next_review_at ASC", "q.id ASC").
		Limit(uint64(limit))

	query = withTagFilter(query, tagID)

	ids, err := s.queryIDs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select due questions: %w", err)
	}
	return ids, nil
}

// SelectMixed returns due questions first, then fills the remainder of the
// limit with unseen ones. The two pools are disjoint: a due question has a
// progress row, an unseen one does not.
func (s *Selector) SelectMixed(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error) {
	due, err := s.SelectDue(ctx, userID, tagID, now, limit)
	if err != nil {
		return nil, err
	}
	if len(due) >= limit {
		return due, nil
	}

	fresh, err := s.SelectNew(ctx, userID, tagID, limit-len(due))
	if err != nil {
		return nil, err
	}

	return append(due, fresh...), nil
}

// withTagFilter narrows the pool to questions carrying the tag.
func withTagFilter(query squirrel.SelectBuilder, tagID *uuid.UUID) squirrel.SelectBuilder {
	if tagID == nil {
		return query
	}
	return query.
		Join("question_tags qt ON qt.question_id = q.id").
		Where(squirrel.Eq{"qt.tag_id": *tagID})
}

func (s *Selector) queryIDs(ctx context.Context, query squirrel.SelectBuilder) ([]uuid.UUID, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, s.pool)

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
