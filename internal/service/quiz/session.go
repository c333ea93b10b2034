package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/medrecall/quizdeck-backend/internal/domain"
	"github.com/medrecall/quizdeck-backend/pkg/ctxutil"
)

// CreateSession asks the content selector for the pool matching the session
// type, freezes the returned ordering and persists the session as ACTIVE.
// An empty pool is not an error: the session is created with an empty
// question list and the caller decides what to show.
func (s *Service) CreateSession(ctx context.Context, input CreateSessionInput) (*domain.QuizSession, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = s.cfg.DefaultSessionLimit
	}

	now := time.Now()

	var (
		questionIDs []uuid.UUID
		err         error
	)
	switch input.Type {
	case domain.SessionTypeNew:
		questionIDs, err = s.selector.SelectNew(ctx, userID, input.TagID, limit)
	case domain.SessionTypeReview:
		questionIDs, err = s.selector.SelectDue(ctx, userID, input.TagID, now, limit)
	case domain.SessionTypeMixed:
		questionIDs, err = s.selector.SelectMixed(ctx, userID, input.TagID, now, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("select %s pool: %w", input.Type, err)
	}

	session := &domain.QuizSession{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        input.Type,
		QuestionIDs: questionIDs,
		CreatedAt:   now,
	}

	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.InfoContext(ctx, "session created",
		slog.String("user_id", userID.String()),
		slog.String("session_id", created.ID.String()),
		slog.String("session_type", string(created.Type)),
		slog.Int("question_count", len(created.QuestionIDs)),
	)

	return created, nil
}

// ActiveSession returns the user's most recent uncompleted session, or nil
// if every session has been completed.
func (s *Service) ActiveSession(ctx context.Context) (*domain.QuizSession, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	session, err := s.sessions.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return session, nil
}

// Resume returns the unanswered question ids of a session in their original
// order. It never mutates state, so resuming is idempotent: a session with
// no answers yields the full frozen list.
func (s *Service) Resume(ctx context.Context, input ResumeInput) ([]uuid.UUID, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", input.SessionID, domain.ErrAccessDenied)
	}

	answered, err := s.answers.AnsweredSet(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load answered set: %w", err)
	}

	return session.Remaining(answered), nil
}

// completeIfExhausted marks the session COMPLETED when no question ids
// remain unanswered. The repository guards the transition with a
// conditional "only if completed_at is still null" update, so concurrent
// submissions race harmlessly: at most one of them flips the session.
func (s *Service) completeIfExhausted(ctx context.Context, session *domain.QuizSession, now time.Time) error {
	answered, err := s.answers.AnsweredSet(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("load answered set: %w", err)
	}

	if len(session.Remaining(answered)) > 0 {
		return nil
	}

	completed, err := s.sessions.Complete(ctx, session.ID, now)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if completed {
		s.log.InfoContext(ctx, "session completed",
			slog.String("session_id", session.ID.String()),
			slog.Int("question_count", len(session.QuestionIDs)),
		)
	}

	return nil
}
