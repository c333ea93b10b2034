package domain

import (
	"time"

	"github.com/google/uuid"
)

// Question is a multiple-choice question with aggregate answer statistics.
// Invariant: exactly one Option has IsCorrect = true.
type Question struct {
	ID              uuid.UUID
	Text            string
	Explanation     string
	Difficulty      QuestionDifficulty
	Options         []Option
	TimesAsked      int
	TimesCorrect    int
	AvgTimeToAnswer *int // milliseconds, nil until first answer
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Option is a single answer choice belonging to a question.
type Option struct {
	ID         uuid.UUID
	QuestionID uuid.UUID
	Text       string
	IsCorrect  bool
}

// CorrectOption returns the single correct option.
// The bool is false if the invariant is broken (no correct option stored).
func (q *Question) CorrectOption() (Option, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o, true
		}
	}
	return Option{}, false
}

// HasOption reports whether the given option id belongs to this question.
func (q *Question) HasOption(optionID uuid.UUID) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

