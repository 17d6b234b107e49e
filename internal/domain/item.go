package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Item-specific validation errors
var (
	// ErrItemIDEmpty is returned when an item ID is empty or nil.
	ErrItemIDEmpty = errors.New("review item ID cannot be empty")

	// ErrItemContentRefEmpty is returned when an item's content reference is empty.
	ErrItemContentRefEmpty = errors.New("review item content reference cannot be empty")
)

// ReviewItem represents a learnable unit: a flashcard, a topic, or a note
// fragment. The engine only tracks scheduling for it; the content itself is
// owned by the caller and referenced opaquely through ContentRef.
type ReviewItem struct {
	ID         uuid.UUID `json:"id"`
	ContentRef string    `json:"content_ref"`
	Tags       []string  `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewReviewItem creates a new ReviewItem with the given content reference and
// tags. It generates a new UUID for the item ID and sets the creation
// timestamp. Duplicate tags are collapsed; tag order is not significant.
// Returns an error if validation fails.
func NewReviewItem(contentRef string, tags []string) (*ReviewItem, error) {
	item := &ReviewItem{
		ID:         uuid.New(),
		ContentRef: contentRef,
		Tags:       dedupeTags(tags),
		CreatedAt:  time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the ReviewItem has valid data.
// Returns an error if any field fails validation.
func (i *ReviewItem) Validate() error {
	if i.ID == uuid.Nil {
		return ErrItemIDEmpty
	}

	if i.ContentRef == "" {
		return ErrItemContentRefEmpty
	}

	return nil
}

// HasTag reports whether the item carries the given tag.
func (i *ReviewItem) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// dedupeTags removes duplicate tags while preserving first-seen order.
func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
