package quiz

import (
	"math"
	"time"

	"github.com/medrecall/quizdeck-backend/internal/domain"
)

// SM-2 constants. The quality scale is fixed by the rating mapping
// (again=0, hard=3, good=4, easy=5); only these four values occur.
const (
	initialEaseFactor = 2.5
	lapseEasePenalty  = 0.2
	graduationReps    = 5
)

// ComputeNextReview is a pure function: prior progress plus a performance
// rating yields the next progress record. No DB, no clock, no logger: the
// caller supplies now. A nil prior means the user answers this question for
// the first time.
//
// The algorithm is an SM-2 variant:
//   - quality < 3 (rating "again") resets repetitions, sets a one-day
//     interval and drops the ease factor by 0.2 (floored at 1.3). A record
//     that had already graduated regresses to lapsed instead of learning.
//   - otherwise repetitions increment and the interval grows 1 → 6 →
//     round(interval × ease); the ease factor moves by
//     0.1 − (5−q)(0.08 + (5−q)·0.02), floored at 1.3.
//   - five consecutive successful repetitions graduate the record.
func ComputeNextReview(prior *domain.ProgressRecord, rating domain.PerformanceRating, now time.Time) domain.ProgressRecord {
	next := domain.ProgressRecord{
		Status:          domain.ProgressStatusNew,
		EaseFactor:      initialEaseFactor,
		CurrentInterval: 0,
		Repetitions:     0,
	}
	if prior != nil {
		next = *prior
	}

	q := rating.QualityScore()

	if q < 3 {
		next.Repetitions = 0
		next.CurrentInterval = 1
		next.EaseFactor = math.Max(domain.MinEaseFactor, next.EaseFactor-lapseEasePenalty)
		if prior != nil && prior.Status == domain.ProgressStatusGraduated {
			next.Status = domain.ProgressStatusLapsed
		} else {
			next.Status = domain.ProgressStatusLearning
		}
	} else {
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.CurrentInterval = 1
		case 2:
			next.CurrentInterval = 6
		default:
			next.CurrentInterval = int(math.Round(float64(next.CurrentInterval) * next.EaseFactor))
		}

		delta := 0.1 - float64(5-q)*(0.08+float64(5-q)*0.02)
		next.EaseFactor = math.Max(domain.MinEaseFactor, next.EaseFactor+delta)

		if next.Repetitions >= graduationReps {
			next.Status = domain.ProgressStatusGraduated
		} else {
			next.Status = domain.ProgressStatusLearning
		}
	}

	reviewedAt := now.UTC()
	next.NextReviewAt = reviewedAt.AddDate(0, 0, next.CurrentInterval)
	next.LastReviewedAt = &reviewedAt

	return next
}
