package srs

import (
	"math"
	"time"

	"github.com/revisehq/revise-api/internal/domain"
)

// retentionProbability estimates the probability the learner still recalls
// the item at the given instant, using an exponential forgetting curve over
// the item's personalized half-life:
//
//	p = 2^(−Δdays / halfLife)
//
// where Δdays is the time since the last review. An item that has never been
// reviewed has not started decaying and reports 1.0. The result is clamped
// to params.RetentionFloor because downstream ranking takes 1/p.
func retentionProbability(state *domain.SchedulingState, now time.Time, params *Params) float64 {
	if state.NeverReviewed() {
		return 1.0
	}

	elapsedDays := now.Sub(state.LastReviewedAt).Hours() / hoursPerDay
	if elapsedDays <= 0 {
		return 1.0
	}

	p := math.Exp2(-elapsedDays / state.DecayHalfLifeDays)
	if p < params.RetentionFloor {
		p = params.RetentionFloor
	}

	return p
}
