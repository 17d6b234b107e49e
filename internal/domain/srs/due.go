package srs

import (
	"fmt"
	"sort"
	"time"

	"github.com/revisehq/revise-api/internal/domain"
)

// ScheduledItem pairs a review item with its scheduling state for the
// collection-level operations (due selection and refresh ranking).
type ScheduledItem struct {
	Item  *domain.ReviewItem      `json:"item"`
	State *domain.SchedulingState `json:"state"`
}

// SelectDue returns the ordered subset of items due for review at the given
// instant. An item is due when now >= NextDueAt; for a never-reviewed item
// NextDueAt is its registration time, so new items are due immediately.
//
// Ordering: most overdue first; when overdue amounts tie, the lower ease
// factor wins so hard items are not starved behind easy ones. A positive
// limit truncates the result; items cut off by the limit are not penalized,
// their schedule is untouched and the overdue-first ordering surfaces them
// on subsequent calls. A limit of 0 means no truncation; a negative limit
// returns ErrInvalidArgument.
//
// An empty result is not an error: nothing due yields an empty slice.
func SelectDue(items []ScheduledItem, now time.Time, limit int) ([]ScheduledItem, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidArgument, limit)
	}

	due := make([]ScheduledItem, 0)
	for _, it := range items {
		if it.Item == nil || it.State == nil {
			return nil, fmt.Errorf("%w: scheduled item missing item or state", ErrInvalidArgument)
		}
		if !now.Before(it.State.NextDueAt) {
			due = append(due, it)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		overdueI := now.Sub(due[i].State.NextDueAt)
		overdueJ := now.Sub(due[j].State.NextDueAt)
		if overdueI != overdueJ {
			return overdueI > overdueJ
		}
		return due[i].State.EaseFactor < due[j].State.EaseFactor
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}
