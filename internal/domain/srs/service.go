package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/revisehq/revise-api/internal/domain"
)

// Common errors
var (
	// ErrNilState is returned when a nil scheduling state is supplied.
	ErrNilState = errors.New("scheduling state cannot be nil")

	// ErrInvalidQuality is returned when a quality score is outside [0,5].
	ErrInvalidQuality = errors.New("quality score must be in [0,5]")

	// ErrCorruptState is returned when persisted scheduling state violates
	// an engine invariant on entry (ease factor below the floor or a
	// negative interval). This indicates a persistence-layer bug upstream;
	// it is fatal for the operation and must not be silently corrected.
	ErrCorruptState = errors.New("corrupt scheduling state")

	// ErrInvalidArgument is returned for bad limit or threshold values.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidDays is returned when postpone days is less than 1.
	ErrInvalidDays = errors.New("postpone days must be at least 1")
)

// Service defines the interface for scheduling engine operations on a single
// item's state. All methods are pure: they take explicit state snapshots and
// return successors without internal concurrency or I/O, so the only
// discipline callers must observe is one in-flight ApplyReview per item id.
type Service interface {
	// ApplyReview computes the successor state for a review with the given
	// canonical quality score.
	ApplyReview(
		state *domain.SchedulingState,
		quality float64,
		now time.Time,
	) (*domain.SchedulingState, error)

	// Retention estimates the probability the learner still recalls the
	// item at the given instant.
	Retention(state *domain.SchedulingState, now time.Time) (float64, error)

	// Postpone pushes the next due time forward by a number of days
	// without touching the review statistics.
	Postpone(
		state *domain.SchedulingState,
		days int,
		now time.Time,
	) (*domain.SchedulingState, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// ApplyReview implements the Service interface for applying a review outcome.
func (s *defaultService) ApplyReview(
	state *domain.SchedulingState,
	quality float64,
	now time.Time,
) (*domain.SchedulingState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if quality < MinQuality || quality > MaxQuality {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidQuality, quality)
	}

	if err := checkPreconditions(state, s.params); err != nil {
		return nil, err
	}

	return applyReview(state, quality, now, s.params), nil
}

// Retention implements the Service interface for the decay model.
func (s *defaultService) Retention(
	state *domain.SchedulingState,
	now time.Time,
) (float64, error) {
	if state == nil {
		return 0, ErrNilState
	}

	return retentionProbability(state, now, s.params), nil
}

// Postpone implements the Service interface for pushing a review forward.
func (s *defaultService) Postpone(
	state *domain.SchedulingState,
	days int,
	now time.Time,
) (*domain.SchedulingState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	newState := state.Clone()
	newState.NextDueAt = state.NextDueAt.AddDate(0, 0, days)
	newState.UpdatedAt = now

	return newState, nil
}

// checkPreconditions rejects persisted state that violates engine invariants.
func checkPreconditions(state *domain.SchedulingState, params *Params) error {
	if state.EaseFactor < params.MinEaseFactor {
		return fmt.Errorf("%w: ease factor %.4f below floor %.2f",
			ErrCorruptState, state.EaseFactor, params.MinEaseFactor)
	}

	if state.IntervalDays < 0 {
		return fmt.Errorf("%w: negative interval %d",
			ErrCorruptState, state.IntervalDays)
	}

	return nil
}
