package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/domain/srs"
)

// Service provides the persistence-aware review operations: registering
// items with the scheduling engine, applying review outcomes inside a
// transaction, and reading the due and refresh rankings.
type Service interface {
	// RegisterItem creates a review item together with its default
	// scheduling state, making it due immediately.
	RegisterItem(ctx context.Context, contentRef string, tags []string) (*domain.ReviewItem, error)

	// GetItem retrieves an item together with its scheduling state.
	// Returns ErrItemNotFound if the item does not exist.
	GetItem(ctx context.Context, itemID uuid.UUID) (*srs.ScheduledItem, error)

	// ListItems retrieves review items, most recently created first.
	ListItems(ctx context.Context, limit, offset int) ([]*domain.ReviewItem, error)

	// DeleteItem removes an item and, through the store, its scheduling state
	// and review events.
	// Returns ErrItemNotFound if the item does not exist.
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// GetNextItem retrieves the most urgent item due for review.
	// Returns ErrNoItemsDue when nothing is due.
	GetNextItem(ctx context.Context, now time.Time) (*srs.ScheduledItem, error)

	// DueItems returns the ordered due set at the given instant.
	// A limit of 0 means no truncation.
	DueItems(ctx context.Context, now time.Time, limit int) ([]srs.ScheduledItem, error)

	// RefreshSuggestions ranks items whose estimated retention has dropped
	// below the threshold, most at-risk first. The threshold is mandatory.
	RefreshSuggestions(ctx context.Context, now time.Time, threshold float64) ([]srs.RefreshSuggestion, error)

	// SubmitReview normalizes a raw outcome, applies it to the item's
	// scheduling state, and appends a review event, all in one
	// transaction with the state row locked.
	// Returns ErrItemNotFound if the item does not exist.
	SubmitReview(
		ctx context.Context,
		itemID uuid.UUID,
		raw domain.RawOutcome,
		now time.Time,
	) (*domain.SchedulingState, error)

	// PostponeItem pushes an item's next due time forward by days without
	// touching its review statistics.
	// Returns ErrItemNotFound if the item does not exist.
	PostponeItem(
		ctx context.Context,
		itemID uuid.UUID,
		days int,
		now time.Time,
	) (*domain.SchedulingState, error)

	// ItemHistory returns the item's review events, oldest first.
	// Returns ErrItemNotFound if the item does not exist.
	ItemHistory(
		ctx context.Context,
		itemID uuid.UUID,
		limit, offset int,
	) ([]*domain.ReviewEvent, error)
}

// Common error types for the review service
var (
	// ErrNoItemsDue indicates that nothing is currently due for review.
	ErrNoItemsDue = errors.New("no items due for review")

	// ErrItemNotFound indicates that the item does not exist.
	ErrItemNotFound = errors.New("item not found")
)

// ServiceError wraps errors from the review service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
