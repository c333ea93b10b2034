package quiz

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/medrecall/quizdeck-backend/internal/config"
	"github.com/medrecall/quizdeck-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type questionRepo interface {
	GetByID(ctx context.Context, questionID uuid.UUID) (*domain.Question, error)
	IncrementStats(ctx context.Context, questionID uuid.UUID, correct bool, timeToAnswerMs int) error
	CountUnseen(ctx context.Context, userID uuid.UUID) (int, error)
}

type progressRepo interface {
	Get(ctx context.Context, userID, questionID uuid.UUID) (*domain.ProgressRecord, error)
	Upsert(ctx context.Context, record *domain.ProgressRecord) error
	CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	CountByStatus(ctx context.Context, userID uuid.UUID, status domain.ProgressStatus) (int, error)
}

type sessionRepo interface {
	Create(ctx context.Context, session *domain.QuizSession) (*domain.QuizSession, error)
	GetByID(ctx context.Context, sessionID uuid.UUID) (*domain.QuizSession, error)
	GetActive(ctx context.Context, userID uuid.UUID) (*domain.QuizSession, error)
	Complete(ctx context.Context, sessionID uuid.UUID, completedAt time.Time) (bool, error)
}

type answerRepo interface {
	Append(ctx context.Context, event *domain.AnswerEvent) error
	Get(ctx context.Context, sessionID, questionID uuid.UUID) (*domain.AnswerEvent, error)
	AnsweredSet(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]bool, error)
}

// contentSelector supplies ordered candidate question ids per pool.
// The service treats it as a black box and owns no selection SQL.
type contentSelector interface {
	SelectNew(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, limit int) ([]uuid.UUID, error)
	SelectDue(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error)
	SelectMixed(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the quiz business logic: session lifecycle, answer
// processing and spaced-repetition scheduling.
type Service struct {
	questions questionRepo
	progress  progressRepo
	sessions  sessionRepo
	answers   answerRepo
	selector  contentSelector
	tx        txManager
	log       *slog.Logger
	cfg       config.QuizConfig
}

// NewService creates a new quiz service.
func NewService(
	log *slog.Logger,
	questions questionRepo,
	progress progressRepo,
	sessions sessionRepo,
	answers answerRepo,
	selector contentSelector,
	tx txManager,
	cfg config.QuizConfig,
) *Service {
	return &Service{
		questions: questions,
		progress:  progress,
		sessions:  sessions,
		answers:   answers,
		selector:  selector,
		tx:        tx,
		log:       log.With("service", "quiz"),
		cfg:       cfg,
	}
}
