package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/revisehq/revise-api/internal/domain"
)

// ReviewEventStore defines the interface for the append-only review event
// log. Events are immutable once recorded: there is no update or delete
// beyond the cascade when the owning item is removed.
type ReviewEventStore interface {
	// Append records a review event.
	// Returns validation errors from the domain ReviewEvent if data is invalid.
	Append(ctx context.Context, event *domain.ReviewEvent) error

	// ListByItem retrieves the events for an item, oldest first, the order
	// half-life recalibration and analytics consume them in.
	ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*domain.ReviewEvent, error)

	// WithTx returns a new ReviewEventStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ReviewEventStore
}
