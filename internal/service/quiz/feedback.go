package quiz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/medrecall/quizdeck-backend/internal/domain"
	"github.com/medrecall/quizdeck-backend/pkg/ctxutil"
)

// QuestionFeedback returns the correct option and explanation for a
// question, for study modes that reveal feedback after the fact instead
// of on every submit.
func (s *Service) QuestionFeedback(ctx context.Context, questionID uuid.UUID) (*QuestionFeedback, error) {
	if _, ok := ctxutil.UserIDFromCtx(ctx); !ok {
		return nil, domain.ErrUnauthorized
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}

	correct, ok := question.CorrectOption()
	if !ok {
		return nil, fmt.Errorf("question %s has no correct option", questionID)
	}

	return &QuestionFeedback{
		CorrectOptionID: correct.ID,
		Explanation:     question.Explanation,
	}, nil
}
