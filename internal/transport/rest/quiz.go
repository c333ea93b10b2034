package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/medrecall/quizdeck-backend/internal/domain"
	"github.com/medrecall/quizdeck-backend/internal/service/quiz"
)

// quizService defines the minimal interface needed by QuizHandler.
type quizService interface {
	CreateSession(ctx context.Context, input quiz.CreateSessionInput) (*domain.QuizSession, error)
	ActiveSession(ctx context.Context) (*domain.QuizSession, error)
	Resume(ctx context.Context, input quiz.ResumeInput) ([]uuid.UUID, error)
	SubmitAnswer(ctx context.Context, input quiz.SubmitAnswerInput) (*quiz.SubmitAnswerResult, error)
	QuestionFeedback(ctx context.Context, questionID uuid.UUID) (*quiz.QuestionFeedback, error)
	DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
}

// QuizHandler serves the quiz REST endpoints.
type QuizHandler struct {
	svc quizService
	log *slog.Logger
}

// NewQuizHandler creates a QuizHandler.
func NewQuizHandler(svc quizService, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{svc: svc, log: logger.With("handler", "quiz")}
}

type createSessionRequest struct {
	SessionType string  `json:"sessionType"`
	TagID       *string `json:"tagId,omitempty"`
	Limit       int     `json:"limit,omitempty"`
}

type submitAnswerRequest struct {
	QuestionID        string `json:"questionId"`
	SelectedOptionID  string `json:"selectedOptionId"`
	PerformanceRating string `json:"performanceRating"`
	TimeToAnswerMs    int    `json:"timeToAnswerMs"`
}

type sessionResponse struct {
	ID          string     `json:"id"`
	SessionType string     `json:"sessionType"`
	QuestionIDs []string   `json:"questionIds"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type resumeResponse struct {
	SessionID            string   `json:"sessionId"`
	RemainingQuestionIDs []string `json:"remainingQuestionIds"`
}

type progressResponse struct {
	Status          string    `json:"status"`
	EaseFactor      float64   `json:"easeFactor"`
	CurrentInterval int       `json:"currentIntervalDays"`
	Repetitions     int       `json:"repetitions"`
	NextReviewAt    time.Time `json:"nextReviewAt"`
}

type submitAnswerResponse struct {
	IsCorrect       bool             `json:"isCorrect"`
	CorrectOptionID string           `json:"correctOptionId"`
	Explanation     string           `json:"explanation,omitempty"`
	Progress        progressResponse `json:"progress"`
}

type feedbackResponse struct {
	CorrectOptionID string `json:"correctOptionId"`
	Explanation     string `json:"explanation,omitempty"`
}

type dashboardResponse struct {
	DueForReview int `json:"dueForReview"`
	NewQuestions int `json:"newQuestions"`
	Graduated    int `json:"graduated"`
}

// CreateSession handles POST /quiz/sessions.
func (h *QuizHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := quiz.CreateSessionInput{
		Type:  domain.SessionType(req.SessionType),
		Limit: req.Limit,
	}
	if req.TagID != nil {
		tagID, err := uuid.Parse(*req.TagID)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "tagId must be a valid UUID")
			return
		}
		input.TagID = &tagID
	}

	session, err := h.svc.CreateSession(r.Context(), input)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// ActiveSession handles GET /quiz/sessions/active.
// A user with no open session gets 404, matching the not-found semantics
// of the resource-style URL.
func (h *QuizHandler) ActiveSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.ActiveSession(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// Resume handles GET /quiz/sessions/{id}/resume.
func (h *QuizHandler) Resume(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "session id must be a valid UUID")
		return
	}

	remaining, err := h.svc.Resume(r.Context(), quiz.ResumeInput{SessionID: sessionID})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	ids := make([]string, len(remaining))
	for i, id := range remaining {
		ids[i] = id.String()
	}

	writeJSON(w, http.StatusOK, resumeResponse{
		SessionID:            sessionID.String(),
		RemainingQuestionIDs: ids,
	})
}

// SubmitAnswer handles POST /quiz/sessions/{id}/answer.
func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "session id must be a valid UUID")
		return
	}

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "questionId must be a valid UUID")
		return
	}
	optionID, err := uuid.Parse(req.SelectedOptionID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "selectedOptionId must be a valid UUID")
		return
	}
	rating, ok := domain.ParseRating(req.PerformanceRating)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "performanceRating must be again, hard, good, or easy")
		return
	}

	result, err := h.svc.SubmitAnswer(r.Context(), quiz.SubmitAnswerInput{
		SessionID:        sessionID,
		QuestionID:       questionID,
		SelectedOptionID: optionID,
		Rating:           rating,
		TimeToAnswerMs:   req.TimeToAnswerMs,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submitAnswerResponse{
		IsCorrect:       result.IsCorrect,
		CorrectOptionID: result.CorrectOptionID.String(),
		Explanation:     result.Explanation,
		Progress: progressResponse{
			Status:          result.UpdatedProgress.Status.String(),
			EaseFactor:      result.UpdatedProgress.EaseFactor,
			CurrentInterval: result.UpdatedProgress.CurrentInterval,
			Repetitions:     result.UpdatedProgress.Repetitions,
			NextReviewAt:    result.UpdatedProgress.NextReviewAt,
		},
	})
}

// QuestionFeedback handles GET /questions/{id}/feedback. Clients running a
// deferred-feedback mode call it after the session instead of reading the
// feedback off each submit response.
func (h *QuizHandler) QuestionFeedback(w http.ResponseWriter, r *http.Request) {
	questionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "question id must be a valid UUID")
		return
	}

	feedback, err := h.svc.QuestionFeedback(r.Context(), questionID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, feedbackResponse{
		CorrectOptionID: feedback.CorrectOptionID.String(),
		Explanation:     feedback.Explanation,
	})
}

// DashboardSummary handles GET /dashboard/summary.
func (h *QuizHandler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.DashboardSummary(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		DueForReview: summary.DueForReviewCount,
		NewQuestions: summary.NewQuestionsCount,
		Graduated:    summary.GraduatedCount,
	})
}

func (h *QuizHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, domain.ErrSessionClosed):
		writeError(w, http.StatusConflict, "session already completed")
	case errors.Is(err, domain.ErrInvalidSubmission):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func toSessionResponse(session *domain.QuizSession) sessionResponse {
	ids := make([]string, len(session.QuestionIDs))
	for i, id := range session.QuestionIDs {
		ids[i] = id.String()
	}
	return sessionResponse{
		ID:          session.ID.String(),
		SessionType: session.Type.String(),
		QuestionIDs: ids,
		CreatedAt:   session.CreatedAt,
		CompletedAt: session.CompletedAt,
	}
}
