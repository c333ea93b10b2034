package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/medrecall/quizdeck-backend/internal/domain"
	"github.com/medrecall/quizdeck-backend/pkg/ctxutil"
)

// DashboardSummary returns the per-user study counters shown on the
// dashboard: questions due for review, questions never seen, and questions
// that have graduated out of the learning loop.
func (s *Service) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	now := time.Now()

	due, err := s.progress.CountDue(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("count due: %w", err)
	}

	unseen, err := s.questions.CountUnseen(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unseen: %w", err)
	}

	graduated, err := s.progress.CountByStatus(ctx, userID, domain.ProgressStatusGraduated)
	if err != nil {
		return nil, fmt.Errorf("count graduated: %w", err)
	}

	return &domain.DashboardSummary{
		DueForReviewCount: due,
		NewQuestionsCount: unseen,
		GraduatedCount:    graduated,
	}, nil
}
