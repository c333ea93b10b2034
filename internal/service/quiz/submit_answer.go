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

// errDuplicateAnswer aborts the submission transaction when the unique
// constraint on (session_id, question_id) fires under a concurrent retry.
var errDuplicateAnswer = errors.New("duplicate answer event")

// SubmitAnswer processes one answer submission. On the first submission for
// a (session, question) pair, four effects commit in a single transaction:
// the answer event is appended, the progress record is recomputed and
// upserted, the question's aggregate counters are bumped, and the session
// is completed if no questions remain. A repeated submission is an
// idempotent replay: the stored result comes back unchanged and no
// scheduling or counter update happens again.
func (s *Service) SubmitAnswer(ctx context.Context, input SubmitAnswerInput) (*SubmitAnswerResult, error) {
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
	if !sessionContains(session, input.QuestionID) {
		return nil, fmt.Errorf("question %s is not part of session %s: %w",
			input.QuestionID, input.SessionID, domain.ErrInvalidSubmission)
	}

	question, err := s.questions.GetByID(ctx, input.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if !question.HasOption(input.SelectedOptionID) {
		return nil, fmt.Errorf("option %s does not belong to question %s: %w",
			input.SelectedOptionID, input.QuestionID, domain.ErrInvalidSubmission)
	}

	correctOption, ok := question.CorrectOption()
	if !ok {
		return nil, fmt.Errorf("question %s has no correct option", question.ID)
	}

	// Fast path for client retries: the stored event is the idempotency key.
	// It outranks the closed check so that retrying the answer that completed
	// the session still replays instead of failing.
	existing, err := s.answers.Get(ctx, session.ID, input.QuestionID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing answer: %w", err)
	}
	if existing != nil {
		return s.replayResult(ctx, userID, question, correctOption.ID, existing)
	}

	if !session.IsActive() {
		return nil, fmt.Errorf("session %s: %w", input.SessionID, domain.ErrSessionClosed)
	}

	prior, err := s.progress.Get(ctx, userID, input.QuestionID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	now := time.Now()
	isCorrect := input.SelectedOptionID == correctOption.ID

	next := ComputeNextReview(prior, input.Rating, now)
	next.UserID = userID
	next.QuestionID = input.QuestionID

	event := &domain.AnswerEvent{
		ID:               uuid.New(),
		SessionID:        session.ID,
		QuestionID:       input.QuestionID,
		SelectedOptionID: input.SelectedOptionID,
		IsCorrect:        isCorrect,
		Rating:           input.Rating,
		TimeToAnswerMs:   input.TimeToAnswerMs,
		AnsweredAt:       now,
		Progress: domain.ProgressSnapshot{
			Status:          next.Status,
			EaseFactor:      next.EaseFactor,
			CurrentInterval: next.CurrentInterval,
			Repetitions:     next.Repetitions,
			NextReviewAt:    next.NextReviewAt,
		},
	}

	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// The event goes first: if the unique constraint fires, nothing
		// else has been applied and the whole unit rolls back cleanly.
		if err := s.answers.Append(txCtx, event); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return errDuplicateAnswer
			}
			return fmt.Errorf("append answer event: %w", err)
		}

		if err := s.progress.Upsert(txCtx, &next); err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}

		// The store folds the answer in as a delta; a concurrent answer to
		// the same question from another session cannot be lost.
		if err := s.questions.IncrementStats(txCtx, question.ID, isCorrect, input.TimeToAnswerMs); err != nil {
			return fmt.Errorf("increment question stats: %w", err)
		}

		return s.completeIfExhausted(txCtx, session, now)
	})

	if txErr != nil {
		if errors.Is(txErr, errDuplicateAnswer) {
			// Lost a race against a concurrent identical submission.
			stored, getErr := s.answers.Get(ctx, session.ID, input.QuestionID)
			if getErr != nil {
				return nil, fmt.Errorf("get answer after duplicate: %w", getErr)
			}
			return s.replayResult(ctx, userID, question, correctOption.ID, stored)
		}
		return nil, txErr
	}

	s.log.InfoContext(ctx, "answer submitted",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.String("question_id", question.ID.String()),
		slog.Bool("is_correct", isCorrect),
		slog.String("rating", string(input.Rating)),
		slog.String("progress_status", string(next.Status)),
		slog.Int("interval_days", next.CurrentInterval),
	)

	return &SubmitAnswerResult{
		IsCorrect:       isCorrect,
		CorrectOptionID: correctOption.ID,
		Explanation:     question.Explanation,
		UpdatedProgress: next,
	}, nil
}

// replayResult rebuilds the response of the original submission from the
// stored answer event. The progress comes from the snapshot taken at
// submission time, so the replay stays identical even if the user has
// reviewed the question again since. The scheduling engine is not
// re-invoked and no counters move.
func (s *Service) replayResult(ctx context.Context, userID uuid.UUID, question *domain.Question, correctOptionID uuid.UUID, event *domain.AnswerEvent) (*SubmitAnswerResult, error) {
	s.log.InfoContext(ctx, "duplicate answer replayed",
		slog.String("session_id", event.SessionID.String()),
		slog.String("question_id", question.ID.String()),
	)

	answeredAt := event.AnsweredAt.UTC()
	return &SubmitAnswerResult{
		IsCorrect:       event.IsCorrect,
		CorrectOptionID: correctOptionID,
		Explanation:     question.Explanation,
		UpdatedProgress: domain.ProgressRecord{
			UserID:          userID,
			QuestionID:      question.ID,
			Status:          event.Progress.Status,
			EaseFactor:      event.Progress.EaseFactor,
			CurrentInterval: event.Progress.CurrentInterval,
			Repetitions:     event.Progress.Repetitions,
			NextReviewAt:    event.Progress.NextReviewAt,
			LastReviewedAt:  &answeredAt,
		},
	}, nil
}

func sessionContains(session *domain.QuizSession, questionID uuid.UUID) bool {
	for _, id := range session.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}
