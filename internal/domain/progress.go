package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinEaseFactor is the SM-2 floor below which the ease factor never drops.
const MinEaseFactor = 1.3

// ProgressRecord tracks one user's spaced-repetition state for one question.
// It is created on the first answer and mutated on every subsequent one.
type ProgressRecord struct {
	UserID          uuid.UUID
	QuestionID      uuid.UUID
	Status          ProgressStatus
	EaseFactor      float64
	CurrentInterval int // days
	Repetitions     int
	NextReviewAt    time.Time
	LastReviewedAt  *time.Time
}

// IsDue reports whether the record's next review time has passed.
func (p *ProgressRecord) IsDue(now time.Time) bool {
	return !p.NextReviewAt.After(now)
}
