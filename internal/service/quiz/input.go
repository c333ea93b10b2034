package quiz

import (
	"github.com/google/uuid"
	"github.com/medrecall/quizdeck-backend/internal/domain"
)

// CreateSessionInput holds the parameters for starting a quiz session.
type CreateSessionInput struct {
	Type  domain.SessionType
	TagID *uuid.UUID
	Limit int
}

// Validate checks all fields and collects all errors.
func (i *CreateSessionInput) Validate() error {
	var errs []domain.FieldError

	if !i.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "session_type", Message: "must be new, review, or mixed"})
	}
	if i.Limit < 0 || i.Limit > 50 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 50"})
	}
	if i.TagID != nil && *i.TagID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "tag_id", Message: "must be a valid UUID when provided"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ResumeInput holds the parameters for resuming a quiz session.
type ResumeInput struct {
	SessionID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *ResumeInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// SubmitAnswerInput holds the parameters for submitting an answer.
type SubmitAnswerInput struct {
	SessionID        uuid.UUID
	QuestionID       uuid.UUID
	SelectedOptionID uuid.UUID
	Rating           domain.PerformanceRating
	TimeToAnswerMs   int
}

// Validate checks all fields and collects all errors.
func (i *SubmitAnswerInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.QuestionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "question_id", Message: "required"})
	}
	if i.SelectedOptionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "selected_option_id", Message: "required"})
	}
	if !i.Rating.IsValid() {
		errs = append(errs, domain.FieldError{Field: "performance_rating", Message: "must be again, hard, good, or easy"})
	}
	if i.TimeToAnswerMs <= 0 {
		errs = append(errs, domain.FieldError{Field: "time_to_answer_ms", Message: "must be positive"})
	}
	if i.TimeToAnswerMs > 3_600_000 {
		errs = append(errs, domain.FieldError{Field: "time_to_answer_ms", Message: "max 1 hour"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
