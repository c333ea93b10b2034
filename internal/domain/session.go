package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuizSession is an ordered, resumable sequence of questions for one user.
// QuestionIDs is frozen at creation and never mutated. A nil CompletedAt
// means the session is ACTIVE; a set CompletedAt means COMPLETED, which is
// terminal. No other transitions exist.
type QuizSession struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        SessionType
	QuestionIDs []uuid.UUID
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// IsActive reports whether the session can still accept answers.
func (s *QuizSession) IsActive() bool {
	return s.CompletedAt == nil
}

// Remaining returns the unanswered question ids in original order.
// answered is the set of question ids that already have an AnswerEvent.
func (s *QuizSession) Remaining(answered map[uuid.UUID]bool) []uuid.UUID {
	remaining := make([]uuid.UUID, 0, len(s.QuestionIDs))
	for _, id := range s.QuestionIDs {
		if !answered[id] {
			remaining = append(remaining, id)
		}
	}
	return remaining
}

// AnswerEvent is the append-only record of one answered question within a
// session. At most one event exists per (session, question) pair; the
// database enforces this with a unique constraint, which doubles as the
// idempotency key for replay detection.
type AnswerEvent struct {
	ID               uuid.UUID
	SessionID        uuid.UUID
	QuestionID       uuid.UUID
	SelectedOptionID uuid.UUID
	IsCorrect        bool
	Rating           PerformanceRating
	TimeToAnswerMs   int
	AnsweredAt       time.Time
	// Progress is the scheduling state this answer produced, frozen at
	// submission time. Replays return it instead of the live record, which
	// may have moved through later reviews in other sessions.
	Progress ProgressSnapshot
}

// ProgressSnapshot is the scheduling state produced by one answer.
type ProgressSnapshot struct {
	Status          ProgressStatus
	EaseFactor      float64
	CurrentInterval int // days
	Repetitions     int
	NextReviewAt    time.Time
}

// DashboardSummary holds per-user study counters for the dashboard.
type DashboardSummary struct {
	DueForReviewCount int
	NewQuestionsCount int
	GraduatedCount    int
}
