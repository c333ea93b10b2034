package domain

// ProgressStatus represents the spaced-repetition lifecycle of a question
// for a single user.
type ProgressStatus string

const (
	ProgressStatusNew       ProgressStatus = "new"
	ProgressStatusLearning  ProgressStatus = "learning"
	ProgressStatusGraduated ProgressStatus = "graduated"
	ProgressStatusLapsed    ProgressStatus = "lapsed"
)

func (s ProgressStatus) String() string { return string(s) }

func (s ProgressStatus) IsValid() bool {
	switch s {
	case ProgressStatusNew, ProgressStatusLearning, ProgressStatusGraduated, ProgressStatusLapsed:
		return true
	}
	return false
}

// SessionType selects the question pool a quiz session draws from.
type SessionType string

const (
	SessionTypeNew    SessionType = "new"
	SessionTypeReview SessionType = "review"
	SessionTypeMixed  SessionType = "mixed"
)

func (t SessionType) String() string { return string(t) }

func (t SessionType) IsValid() bool {
	switch t {
	case SessionTypeNew, SessionTypeReview, SessionTypeMixed:
		return true
	}
	return false
}

// PerformanceRating is the user's self-assessed recall quality for an answer.
type PerformanceRating string

const (
	RatingAgain PerformanceRating = "again"
	RatingHard  PerformanceRating = "hard"
	RatingGood  PerformanceRating = "good"
	RatingEasy  PerformanceRating = "easy"
)

func (r PerformanceRating) String() string { return string(r) }

func (r PerformanceRating) IsValid() bool {
	switch r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return true
	}
	return false
}

// QualityScore maps the rating to the SM-2 quality scale.
// Only the four values 0, 3, 4, 5 are ever produced.
func (r PerformanceRating) QualityScore() int {
	switch r {
	case RatingAgain:
		return 0
	case RatingHard:
		return 3
	case RatingGood:
		return 4
	case RatingEasy:
		return 5
	}
	return 0
}

// ParseRating normalizes a rating string from the API boundary.
// "forgot" is a historical synonym for "again" and is folded into it.
func ParseRating(raw string) (PerformanceRating, bool) {
	if raw == "forgot" {
		return RatingAgain, true
	}
	r := PerformanceRating(raw)
	return r, r.IsValid()
}

// QuestionDifficulty is the difficulty label derived from aggregate accuracy.
type QuestionDifficulty string

const (
	DifficultyEasy   QuestionDifficulty = "easy"
	DifficultyMedium QuestionDifficulty = "medium"
	DifficultyHard   QuestionDifficulty = "hard"
)

func (d QuestionDifficulty) String() string { return string(d) }

func (d QuestionDifficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
