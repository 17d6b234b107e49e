package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LatencyBucket classifies how quickly the learner produced an answer.
type LatencyBucket string

// Possible latency bucket values
const (
	LatencyFast LatencyBucket = "fast"
	LatencySlow LatencyBucket = "slow"
)

// RawOutcome is the unnormalized review signal supplied by the session or
// content layer. Exactly one of the two forms must be populated: either a
// direct self-rating in [0,5], or a correctness judgement plus a response
// latency bucket. Normalization into a canonical quality score is done by
// srs.NormalizeOutcome.
type RawOutcome struct {
	SelfRating *float64       `json:"self_rating,omitempty"`
	Correct    *bool          `json:"correct,omitempty"`
	Latency    *LatencyBucket `json:"latency,omitempty"`
}

// ReviewEvent-specific validation errors
var (
	ErrEventIDEmpty     = errors.New("review event ID cannot be empty")
	ErrEventItemIDEmpty = errors.New("review event item ID cannot be empty")
	ErrEventNoSnapshot  = errors.New("review event must carry a state snapshot")
)

// ReviewEvent is the append-only audit record for a single applied review:
// the raw signal that arrived, the canonical quality it normalized to, and a
// snapshot of the scheduling state that resulted. Events are immutable once
// recorded; the half-life recalibration and analytics read them, nothing
// rewrites them.
type ReviewEvent struct {
	ID         uuid.UUID        `json:"id"`
	ItemID     uuid.UUID        `json:"item_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Raw        RawOutcome       `json:"raw"`
	Quality    float64          `json:"quality"`
	State      *SchedulingState `json:"state"`
}

// NewReviewEvent creates an audit record for an applied review.
// The state snapshot is the scheduling state after the review was applied.
func NewReviewEvent(
	itemID uuid.UUID,
	occurredAt time.Time,
	raw RawOutcome,
	quality float64,
	state *SchedulingState,
) (*ReviewEvent, error) {
	event := &ReviewEvent{
		ID:         uuid.New(),
		ItemID:     itemID,
		OccurredAt: occurredAt,
		Raw:        raw,
		Quality:    quality,
		State:      state,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the ReviewEvent has valid data.
func (e *ReviewEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEventIDEmpty
	}

	if e.ItemID == uuid.Nil {
		return ErrEventItemIDEmpty
	}

	if e.State == nil {
		return ErrEventNoSnapshot
	}

	return nil
}
