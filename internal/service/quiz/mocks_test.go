package quiz

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medrecall/quizdeck-backend/internal/domain"
)

// Hand-rolled mocks for the service's private interfaces. Each method
// delegates to its Func field and counts invocations; a nil Func panics,
// which makes an unexpected call fail loudly.

type questionRepoMock struct {
	GetByIDFunc        func(ctx context.Context, questionID uuid.UUID) (*domain.Question, error)
	IncrementStatsFunc func(ctx context.Context, questionID uuid.UUID, correct bool, timeToAnswerMs int) error
	CountUnseenFunc    func(ctx context.Context, userID uuid.UUID) (int, error)

	GetByIDCalls        int
	IncrementStatsCalls int
	CountUnseenCalls    int
}

func (m *questionRepoMock) GetByID(ctx context.Context, questionID uuid.UUID) (*domain.Question, error) {
	m.GetByIDCalls++
	return m.GetByIDFunc(ctx, questionID)
}

func (m *questionRepoMock) IncrementStats(ctx context.Context, questionID uuid.UUID, correct bool, timeToAnswerMs int) error {
	m.IncrementStatsCalls++
	return m.IncrementStatsFunc(ctx, questionID, correct, timeToAnswerMs)
}

func (m *questionRepoMock) CountUnseen(ctx context.Context, userID uuid.UUID) (int, error) {
	m.CountUnseenCalls++
	return m.CountUnseenFunc(ctx, userID)
}

type progressRepoMock struct {
	GetFunc           func(ctx context.Context, userID, questionID uuid.UUID) (*domain.ProgressRecord, error)
	UpsertFunc        func(ctx context.Context, record *domain.ProgressRecord) error
	CountDueFunc      func(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	CountByStatusFunc func(ctx context.Context, userID uuid.UUID, status domain.ProgressStatus) (int, error)

	GetCalls           int
	UpsertCalls        int
	CountDueCalls      int
	CountByStatusCalls int
}

func (m *progressRepoMock) Get(ctx context.Context, userID, questionID uuid.UUID) (*domain.ProgressRecord, error) {
	m.GetCalls++
	return m.GetFunc(ctx, userID, questionID)
}

func (m *progressRepoMock) Upsert(ctx context.Context, record *domain.ProgressRecord) error {
	m.UpsertCalls++
	return m.UpsertFunc(ctx, record)
}

func (m *progressRepoMock) CountDue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	m.CountDueCalls++
	return m.CountDueFunc(ctx, userID, now)
}

func (m *progressRepoMock) CountByStatus(ctx context.Context, userID uuid.UUID, status domain.ProgressStatus) (int, error) {
	m.CountByStatusCalls++
	return m.CountByStatusFunc(ctx, userID, status)
}

type sessionRepoMock struct {
	CreateFunc    func(ctx context.Context, session *domain.QuizSession) (*domain.QuizSession, error)
	GetByIDFunc   func(ctx context.Context, sessionID uuid.UUID) (*domain.QuizSession, error)
	GetActiveFunc func(ctx context.Context, userID uuid.UUID) (*domain.QuizSession, error)
	CompleteFunc  func(ctx context.Context, sessionID uuid.UUID, completedAt time.Time) (bool, error)

	CreateCalls    int
	GetByIDCalls   int
	GetActiveCalls int
	CompleteCalls  int
}

func (m *sessionRepoMock) Create(ctx context.Context, session *domain.QuizSession) (*domain.QuizSession, error) {
	m.CreateCalls++
	return m.CreateFunc(ctx, session)
}

func (m *sessionRepoMock) GetByID(ctx context.Context, sessionID uuid.UUID) (*domain.QuizSession, error) {
	m.GetByIDCalls++
	return m.GetByIDFunc(ctx, sessionID)
}

func (m *sessionRepoMock) GetActive(ctx context.Context, userID uuid.UUID) (*domain.QuizSession, error) {
	m.GetActiveCalls++
	return m.GetActiveFunc(ctx, userID)
}

func (m *sessionRepoMock) Complete(ctx context.Context, sessionID uuid.UUID, completedAt time.Time) (bool, error) {
	m.CompleteCalls++
	return m.CompleteFunc(ctx, sessionID, completedAt)
}

type answerRepoMock struct {
	AppendFunc      func(ctx context.Context, event *domain.AnswerEvent) error
	GetFunc         func(ctx context.Context, sessionID, questionID uuid.UUID) (*domain.AnswerEvent, error)
	AnsweredSetFunc func(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]bool, error)

	AppendCalls      int
	GetCalls         int
	AnsweredSetCalls int
}

func (m *answerRepoMock) Append(ctx context.Context, event *domain.AnswerEvent) error {
	m.AppendCalls++
	return m.AppendFunc(ctx, event)
}

func (m *answerRepoMock) Get(ctx context.Context, sessionID, questionID uuid.UUID) (*domain.AnswerEvent, error) {
	m.GetCalls++
	return m.GetFunc(ctx, sessionID, questionID)
}

func (m *answerRepoMock) AnsweredSet(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]bool, error) {
	m.AnsweredSetCalls++
	return m.AnsweredSetFunc(ctx, sessionID)
}

type selectorMock struct {
	SelectNewFunc   func(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, limit int) ([]uuid.UUID, error)
	SelectDueFunc   func(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error)
	SelectMixedFunc func(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error)

	SelectNewCalls   int
	SelectDueCalls   int
	SelectMixedCalls int
}

func (m *selectorMock) SelectNew(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, limit int) ([]uuid.UUID, error) {
	m.SelectNewCalls++
	return m.SelectNewFunc(ctx, userID, tagID, limit)
}

func (m *selectorMock) SelectDue(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error) {
	m.SelectDueCalls++
	return m.SelectDueFunc(ctx, userID, tagID, now, limit)
}

func (m *selectorMock) SelectMixed(ctx context.Context, userID uuid.UUID, tagID *uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error) {
	m.SelectMixedCalls++
	return m.SelectMixedFunc(ctx, userID, tagID, now, limit)
}

// txManagerMock runs the callback inline, outside any real transaction.
type txManagerMock struct {
	RunInTxCalls int
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.RunInTxCalls++
	return fn(ctx)
}
