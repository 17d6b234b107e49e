package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Default values for a freshly registered item's scheduling state.
const (
	// DefaultEaseFactor is the starting ease factor for a new item.
	DefaultEaseFactor = 2.5

	// DefaultHalfLifeDays is the starting forgetting-curve half-life for a
	// new item, in days. Decay only begins after the first review, so this
	// value first takes effect once the item has been reviewed.
	DefaultHalfLifeDays = 7.0

	// MinEaseFactor is the hard floor for the ease factor. Values below it
	// indicate corrupted persisted state.
	MinEaseFactor = 1.3

	// MinHalfLifeDays is the hard floor for the decay half-life.
	MinHalfLifeDays = 1.0
)

// Common validation errors for SchedulingState
var (
	ErrStateItemIDEmpty  = errors.New("scheduling state item ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
	ErrInvalidHalfLife   = errors.New("decay half-life must be at least 1 day")
	ErrInvalidStreak     = errors.New("streak must be greater than or equal to 0")
)

// SchedulingState tracks the spaced repetition schedule for a single review
// item. It follows an SM-2 variant extended with a personalized
// forgetting-curve half-life that adapts slowly to review accuracy.
//
// The state is owned exclusively by the scheduling engine: it is created when
// an item is registered, mutated only by srs.Service.ApplyReview (which
// returns a new instance rather than modifying in place), and discarded when
// the owning item is deleted.
type SchedulingState struct {
	ItemID            uuid.UUID `json:"item_id"`
	EaseFactor        float64   `json:"ease_factor"`          // Always >= 1.3
	IntervalDays      int       `json:"interval_days"`        // 0 means due immediately
	Streak            int       `json:"streak"`               // Consecutive qualifying reviews
	ReviewCount       int       `json:"review_count"`         // Total reviews ever applied
	LastReviewedAt    time.Time `json:"last_reviewed_at"`     // Zero time means never reviewed
	NextDueAt         time.Time `json:"next_due_at"`          // Derived from LastReviewedAt + IntervalDays
	DecayHalfLifeDays float64   `json:"decay_half_life_days"` // Always >= 1
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewSchedulingState creates scheduling state for a newly registered item
// with default values. New items are due immediately: NextDueAt is the
// registration time and the interval is zero.
func NewSchedulingState(itemID uuid.UUID, now time.Time) (*SchedulingState, error) {
	state := &SchedulingState{
		ItemID:            itemID,
		EaseFactor:        DefaultEaseFactor,
		IntervalDays:      0,
		Streak:            0,
		ReviewCount:       0,
		LastReviewedAt:    time.Time{}, // Zero time
		NextDueAt:         now,         // Item is available for review immediately
		DecayHalfLifeDays: DefaultHalfLifeDays,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the SchedulingState satisfies its invariants.
// Returns an error if any field fails validation.
func (s *SchedulingState) Validate() error {
	if s.ItemID == uuid.Nil {
		return ErrStateItemIDEmpty
	}

	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if s.DecayHalfLifeDays < MinHalfLifeDays {
		return ErrInvalidHalfLife
	}

	if s.Streak < 0 {
		return ErrInvalidStreak
	}

	return nil
}

// NeverReviewed reports whether the item has never had a review applied.
func (s *SchedulingState) NeverReviewed() bool {
	return s.LastReviewedAt.IsZero()
}

// Clone returns a copy of the state. ApplyReview works on copies so the
// caller's snapshot is never mutated.
func (s *SchedulingState) Clone() *SchedulingState {
	c := *s
	return &c
}
