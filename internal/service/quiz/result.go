package quiz

import (
	"github.com/google/uuid"
	"github.com/medrecall/quizdeck-backend/internal/domain"
)

// SubmitAnswerResult is the feedback returned after an answer submission.
// A replayed duplicate submission returns the same result as the original.
type SubmitAnswerResult struct {
	IsCorrect       bool
	CorrectOptionID uuid.UUID
	Explanation     string
	UpdatedProgress domain.ProgressRecord
}

// QuestionFeedback is the deferred feedback for a single question.
type QuestionFeedback struct {
	CorrectOptionID uuid.UUID
	Explanation     string
}
