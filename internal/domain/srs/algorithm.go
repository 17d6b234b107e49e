package srs

import (
	"math"
	"time"

	"github.com/revisehq/revise-api/internal/domain"
)

// hoursPerDay converts elapsed hours into days for the decay model.
const hoursPerDay = 24

// calculateNewEaseFactor determines the new ease factor from the canonical
// quality score using the SM-2 update:
//
//	ease' = ease + (0.1 − (5−q)·(0.08 + (5−q)·0.02))
//
// A perfect recall (q=5) raises the ease factor by 0.1; anything below 4
// lowers it, sharply so for failing qualities. The result is clamped at
// params.MinEaseFactor so chronically hard items cannot collapse the
// interval growth entirely.
func calculateNewEaseFactor(currentEF, quality float64, params *Params) float64 {
	diff := MaxQuality - quality
	newEF := currentEF + (0.1 - diff*(0.08+diff*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the new interval in days from the streak
// position after this review.
//
// Failing reviews (quality below the pass threshold) drop the item back to
// short-cycle review: the interval becomes params.FailureInterval no matter
// how long it was before. Qualifying reviews walk the ladder 1, 6,
// round(interval × ease') with geometric growth compounded by the
// just-updated ease factor, capped at params.MaxIntervalDays. The cap is
// applied while the product is still a float so a long unbroken streak can
// never overflow the integer interval.
func calculateNewInterval(
	currentInterval int,
	newStreak int,
	newEaseFactor float64,
	passed bool,
	params *Params,
) int {
	if !passed {
		return params.FailureInterval
	}

	switch newStreak {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	default:
		next := math.Round(float64(currentInterval) * newEaseFactor)
		if next > float64(params.MaxIntervalDays) {
			return params.MaxIntervalDays
		}
		return int(next)
	}
}

// calculateNewHalfLife nudges the personalized forgetting-curve half-life as
// an exponential moving adjustment: qualifying reviews grow it by a small
// multiplicative factor, failing reviews shrink it. The result stays within
// [params.MinHalfLifeDays, params.MaxHalfLifeDays]. This is how the decay
// curve adapts over time without being refit from the full event history on
// every review.
func calculateNewHalfLife(currentHalfLife float64, passed bool, params *Params) float64 {
	var newHalfLife float64
	if passed {
		newHalfLife = currentHalfLife * params.HalfLifeGrowth
	} else {
		newHalfLife = currentHalfLife * params.HalfLifeShrink
	}

	if newHalfLife < params.MinHalfLifeDays {
		newHalfLife = params.MinHalfLifeDays
	}
	if newHalfLife > params.MaxHalfLifeDays {
		newHalfLife = params.MaxHalfLifeDays
	}

	return newHalfLife
}

// applyReview computes the successor SchedulingState for a review with the
// given canonical quality score. It never mutates the input state: a new
// instance is returned, which keeps the transition trivially testable and
// pushes persistence and locking concerns onto the caller.
//
// The caller is responsible for validating the quality score and the entry
// preconditions (see defaultService.ApplyReview).
func applyReview(
	state *domain.SchedulingState,
	quality float64,
	now time.Time,
	params *Params,
) *domain.SchedulingState {
	newState := state.Clone()
	passed := quality >= params.PassThreshold

	newState.EaseFactor = calculateNewEaseFactor(state.EaseFactor, quality, params)

	if passed {
		newState.Streak = state.Streak + 1
	} else {
		newState.Streak = 0
	}

	newState.IntervalDays = calculateNewInterval(
		state.IntervalDays,
		newState.Streak,
		newState.EaseFactor,
		passed,
		params,
	)

	newState.DecayHalfLifeDays = calculateNewHalfLife(state.DecayHalfLifeDays, passed, params)

	newState.ReviewCount = state.ReviewCount + 1
	newState.LastReviewedAt = now
	newState.NextDueAt = now.AddDate(0, 0, newState.IntervalDays)
	newState.UpdatedAt = now

	return newState
}
