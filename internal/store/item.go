package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/revisehq/revise-api/internal/domain"
)

// ItemStore defines the interface for review item persistence.
type ItemStore interface {
	// Create saves a new review item.
	// Returns validation errors from the domain ReviewItem if data is invalid.
	// Returns ErrDuplicate if an item with the same ID already exists.
	Create(ctx context.Context, item *domain.ReviewItem) error

	// GetByID retrieves a review item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewItem, error)

	// List retrieves all review items, most recently created first.
	List(ctx context.Context, limit, offset int) ([]*domain.ReviewItem, error)

	// Delete removes a review item. The item's scheduling state and review
	// events are removed with it (cascade).
	// Returns ErrItemNotFound if the item does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ItemStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ItemStore
}
