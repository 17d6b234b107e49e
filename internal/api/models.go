package api

import (
	"time"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/domain/srs"
	"github.com/revisehq/revise-api/internal/service/revision"
)

// ItemResponse represents the response data for a review item
type ItemResponse struct {
	ID         string    `json:"id"`
	ContentRef string    `json:"content_ref"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SchedulingStateResponse represents the response data for an item's
// scheduling state. LastReviewedAt is omitted for never-reviewed items.
type SchedulingStateResponse struct {
	ItemID            string     `json:"item_id"`
	EaseFactor        float64    `json:"ease_factor"`
	IntervalDays      int        `json:"interval_days"`
	Streak            int        `json:"streak"`
	ReviewCount       int        `json:"review_count"`
	LastReviewedAt    *time.Time `json:"last_reviewed_at,omitempty"`
	NextDueAt         time.Time  `json:"next_due_at"`
	DecayHalfLifeDays float64    `json:"decay_half_life_days"`
}

// ScheduledItemResponse pairs an item with its scheduling state
type ScheduledItemResponse struct {
	Item  ItemResponse            `json:"item"`
	State SchedulingStateResponse `json:"state"`
}

// RefreshSuggestionResponse is one entry of the refresh ranking
type RefreshSuggestionResponse struct {
	ScheduledItemResponse
	Retention float64 `json:"retention"`
}

// ReviewEventResponse represents one recorded review
type ReviewEventResponse struct {
	ID         string                  `json:"id"`
	ItemID     string                  `json:"item_id"`
	OccurredAt time.Time               `json:"occurred_at"`
	Raw        domain.RawOutcome       `json:"raw"`
	Quality    float64                 `json:"quality"`
	State      SchedulingStateResponse `json:"state"`
}

// SessionResponse represents a revision session's externally visible state
type SessionResponse struct {
	ID        string                 `json:"id"`
	Status    string                 `json:"status"`
	Remaining int                    `json:"remaining"`
	Next      *ScheduledItemResponse `json:"next,omitempty"`
}

// itemToResponse converts a domain.ReviewItem to an ItemResponse
func itemToResponse(item *domain.ReviewItem) ItemResponse {
	return ItemResponse{
		ID:         item.ID.String(),
		ContentRef: item.ContentRef,
		Tags:       item.Tags,
		CreatedAt:  item.CreatedAt,
	}
}

// stateToResponse converts a domain.SchedulingState to a SchedulingStateResponse
func stateToResponse(state *domain.SchedulingState) SchedulingStateResponse {
	resp := SchedulingStateResponse{
		ItemID:            state.ItemID.String(),
		EaseFactor:        state.EaseFactor,
		IntervalDays:      state.IntervalDays,
		Streak:            state.Streak,
		ReviewCount:       state.ReviewCount,
		NextDueAt:         state.NextDueAt,
		DecayHalfLifeDays: state.DecayHalfLifeDays,
	}
	if !state.LastReviewedAt.IsZero() {
		t := state.LastReviewedAt
		resp.LastReviewedAt = &t
	}
	return resp
}

// scheduledItemToResponse converts an srs.ScheduledItem to a ScheduledItemResponse
func scheduledItemToResponse(item srs.ScheduledItem) ScheduledItemResponse {
	return ScheduledItemResponse{
		Item:  itemToResponse(item.Item),
		State: stateToResponse(item.State),
	}
}

// eventToResponse converts a domain.ReviewEvent to a ReviewEventResponse
func eventToResponse(event *domain.ReviewEvent) ReviewEventResponse {
	return ReviewEventResponse{
		ID:         event.ID.String(),
		ItemID:     event.ItemID.String(),
		OccurredAt: event.OccurredAt,
		Raw:        event.Raw,
		Quality:    event.Quality,
		State:      stateToResponse(event.State),
	}
}

// sessionToResponse converts a revision.Session to a SessionResponse
func sessionToResponse(session *revision.Session) SessionResponse {
	resp := SessionResponse{
		ID:        session.ID().String(),
		Status:    string(session.Status()),
		Remaining: session.Remaining(),
	}
	if next, ok := session.Next(); ok {
		nextResp := scheduledItemToResponse(next)
		resp.Next = &nextResp
	}
	return resp
}
