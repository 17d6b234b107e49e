package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/revisehq/revise-api/internal/domain"
)

// SchedulingStateStore defines the interface for scheduling state persistence.
// There is exactly one state row per review item.
type SchedulingStateStore interface {
	// Create saves the scheduling state for a newly registered item.
	// Returns validation errors from the domain SchedulingState if data is
	// invalid. Returns ErrDuplicate if state already exists for the item.
	Create(ctx context.Context, state *domain.SchedulingState) error

	// Get retrieves scheduling state by item ID.
	// Returns ErrStateNotFound if no state exists for the item.
	// NOTE: This method does NOT provide any row locking; do not use it when
	// you plan to update the row and need concurrency protection.
	Get(ctx context.Context, itemID uuid.UUID) (*domain.SchedulingState, error)

	// GetForUpdate retrieves scheduling state with a row-level lock using
	// SELECT FOR UPDATE. Use it within a transaction when applying a review,
	// so at most one writer updates a given item's state at a time.
	// Returns ErrStateNotFound if no state exists for the item.
	GetForUpdate(ctx context.Context, itemID uuid.UUID) (*domain.SchedulingState, error)

	// Update replaces the stored scheduling state for the item identified by
	// state.ItemID.
	// Returns ErrStateNotFound if no state exists for the item.
	// Returns validation errors from the domain SchedulingState if data is invalid.
	Update(ctx context.Context, state *domain.SchedulingState) error

	// ListWithItems retrieves all items joined with their scheduling state,
	// the shape the due-set selector and refresh ranking operate on.
	ListWithItems(ctx context.Context) ([]ItemWithState, error)

	// WithTx returns a new SchedulingStateStore instance that uses the
	// provided transaction.
	WithTx(tx *sql.Tx) SchedulingStateStore
}

// ItemWithState pairs a persisted review item with its scheduling state.
type ItemWithState struct {
	Item  *domain.ReviewItem
	State *domain.SchedulingState
}
