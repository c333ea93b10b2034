package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medrecall/quizdeck-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user row and returns its id.
func SeedUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	userID := uuid.New()

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, name) VALUES ($1, $2, $3)`,
		userID, "testuser-"+suffix+"@example.com", "Test User "+suffix,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	return userID
}

// SeedTag creates a tag row and returns its id.
func SeedTag(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	tagID := uuid.New()

	_, err := pool.Exec(ctx,
		`INSERT INTO tags (id, name) VALUES ($1, $2)`,
		tagID, "tag-"+uniqueSuffix(),
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTag insert tag: %v", err)
	}

	return tagID
}

// SeedQuestion creates a question with four options (the first one correct)
// and returns the fully populated domain.Question.
func SeedQuestion(t *testing.T, pool *pgxpool.Pool) *domain.Question {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)

	question := &domain.Question{
		ID:          uuid.New(),
		Text:        "Question " + suffix + "?",
		Explanation: "Explanation " + suffix,
		Difficulty:  domain.DifficultyMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO questions (id, question_text, explanation, difficulty, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		question.ID, question.Text, question.Explanation, string(question.Difficulty), now, now,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedQuestion insert question: %v", err)
	}

	question.Options = make([]domain.Option, 4)
	for i := 0; i < 4; i++ {
		option := domain.Option{
			ID:         uuid.New(),
			QuestionID: question.ID,
			Text:       "Option " + suffix + "-" + string(rune('A'+i)),
			IsCorrect:  i == 0,
		}

		_, err := pool.Exec(ctx,
			`INSERT INTO question_options (id, question_id, option_text, is_correct)
			 VALUES ($1, $2, $3, $4)`,
			option.ID, option.QuestionID, option.Text, option.IsCorrect,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedQuestion insert option[%d]: %v", i, err)
		}
		question.Options[i] = option
	}

	return question
}

// TagQuestion links a question to a tag.
func TagQuestion(t *testing.T, pool *pgxpool.Pool, questionID, tagID uuid.UUID) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO question_tags (question_id, tag_id) VALUES ($1, $2)`,
		questionID, tagID,
	)
	if err != nil {
		t.Fatalf("testhelper: TagQuestion insert link: %v", err)
	}
}

// SeedProgress inserts the given progress record as-is.
func SeedProgress(t *testing.T, pool *pgxpool.Pool, record domain.ProgressRecord) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO user_question_progress (user_id, question_id, status, ease_factor, current_interval, repetitions, next_review_at, last_reviewed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.UserID, record.QuestionID, string(record.Status), record.EaseFactor,
		record.CurrentInterval, record.Repetitions, record.NextReviewAt, record.LastReviewedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProgress insert record: %v", err)
	}
}

// SeedSession creates a quiz session with the given frozen question ids and
// returns the persisted domain.QuizSession.
func SeedSession(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, questionIDs []uuid.UUID) *domain.QuizSession {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	session := &domain.QuizSession{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.SessionTypeMixed,
		QuestionIDs: questionIDs,
		CreatedAt:   now,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO quiz_sessions (id, user_id, session_type, question_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.UserID, string(session.Type), session.QuestionIDs, session.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSession insert session: %v", err)
	}

	return session
}
