package review

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/domain/srs"
	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/store"
)

// serviceImpl implements the Service interface on top of the persistence
// stores and the pure scheduling engine.
type serviceImpl struct {
	db         *sql.DB
	itemStore  store.ItemStore
	stateStore store.SchedulingStateStore
	eventStore store.ReviewEventStore
	srsService srs.Service
	params     *srs.Params
	logger     *slog.Logger
}

// NewService creates a new review service with the given dependencies.
// If params is nil, default scheduling parameters are used.
// If log is nil, a default logger will be used.
// Panics if any required dependency is nil.
func NewService(
	db *sql.DB,
	itemStore store.ItemStore,
	stateStore store.SchedulingStateStore,
	eventStore store.ReviewEventStore,
	srsService srs.Service,
	params *srs.Params,
	log *slog.Logger,
) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if itemStore == nil {
		panic("itemStore cannot be nil")
	}
	if stateStore == nil {
		panic("stateStore cannot be nil")
	}
	if eventStore == nil {
		panic("eventStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if params == nil {
		params = srs.NewDefaultParams()
	}
	if log == nil {
		log = slog.Default()
	}

	return &serviceImpl{
		db:         db,
		itemStore:  itemStore,
		stateStore: stateStore,
		eventStore: eventStore,
		srsService: srsService,
		params:     params,
		logger:     log.With(slog.String("component", "review_service")),
	}
}

// Ensure serviceImpl implements Service interface
var _ Service = (*serviceImpl)(nil)

// RegisterItem implements Service.RegisterItem
// It creates the item and its default scheduling state in one transaction,
// so a registered item is always immediately schedulable.
func (s *serviceImpl) RegisterItem(
	ctx context.Context,
	contentRef string,
	tags []string,
) (*domain.ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := domain.NewReviewItem(contentRef, tags)
	if err != nil {
		return nil, NewServiceError("register_item", "invalid item data", err)
	}

	now := time.Now().UTC()
	state, err := domain.NewSchedulingState(item.ID, now)
	if err != nil {
		return nil, NewServiceError("register_item", "invalid initial state", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.itemStore.WithTx(tx).Create(ctx, item); err != nil {
			return err
		}
		return s.stateStore.WithTx(tx).Create(ctx, state)
	})
	if err != nil {
		log.Error("failed to register item",
			slog.String("error", err.Error()),
			slog.String("content_ref", contentRef))
		return nil, NewServiceError("register_item", "failed to persist item", err)
	}

	log.Info("item registered",
		slog.String("item_id", item.ID.String()),
		slog.String("content_ref", contentRef))
	return item, nil
}

// GetItem implements Service.GetItem
// It pairs the stored item with its scheduling state.
func (s *serviceImpl) GetItem(ctx context.Context, itemID uuid.UUID) (*srs.ScheduledItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	item, err := s.itemStore.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		log.Error("failed to load item",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, NewServiceError("get_item", "failed to load item", err)
	}

	state, err := s.stateStore.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// State is created with the item; a missing row means the data
			// is inconsistent, not that the item is unknown.
			log.Error("item has no scheduling state",
				slog.String("item_id", itemID.String()))
		}
		return nil, NewServiceError("get_item", "failed to load scheduling state", err)
	}

	return &srs.ScheduledItem{Item: item, State: state}, nil
}

// ListItems implements Service.ListItems
func (s *serviceImpl) ListItems(
	ctx context.Context,
	limit, offset int,
) ([]*domain.ReviewItem, error) {
	items, err := s.itemStore.List(ctx, limit, offset)
	if err != nil {
		return nil, NewServiceError("list_items", "failed to list items", err)
	}
	return items, nil
}

// DeleteItem implements Service.DeleteItem
func (s *serviceImpl) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.itemStore.Delete(ctx, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrItemNotFound
		}
		log.Error("failed to delete item",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return NewServiceError("delete_item", "failed to delete item", err)
	}

	log.Info("item deleted", slog.String("item_id", itemID.String()))
	return nil
}

// GetNextItem implements Service.GetNextItem
// It returns the most urgent due item, or ErrNoItemsDue when nothing is due.
func (s *serviceImpl) GetNextItem(ctx context.Context, now time.Time) (*srs.ScheduledItem, error) {
	due, err := s.DueItems(ctx, now, 1)
	if err != nil {
		return nil, err
	}

	if len(due) == 0 {
		return nil, ErrNoItemsDue
	}

	return &due[0], nil
}

// DueItems implements Service.DueItems
// It loads all item/state pairs and runs them through the due-set selector.
func (s *serviceImpl) DueItems(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]srs.ScheduledItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pairs, err := s.stateStore.ListWithItems(ctx)
	if err != nil {
		log.Error("failed to list items with state", slog.String("error", err.Error()))
		return nil, NewServiceError("due_items", "failed to load scheduled items", err)
	}

	due, err := srs.SelectDue(toScheduledItems(pairs), now, limit)
	if err != nil {
		return nil, NewServiceError("due_items", "due selection failed", err)
	}

	log.Debug("due set selected",
		slog.Int("candidates", len(pairs)),
		slog.Int("due", len(due)))
	return due, nil
}

// RefreshSuggestions implements Service.RefreshSuggestions
// It ranks items whose estimated retention has fallen below the threshold.
func (s *serviceImpl) RefreshSuggestions(
	ctx context.Context,
	now time.Time,
	threshold float64,
) ([]srs.RefreshSuggestion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pairs, err := s.stateStore.ListWithItems(ctx)
	if err != nil {
		log.Error("failed to list items with state", slog.String("error", err.Error()))
		return nil, NewServiceError("refresh_suggestions", "failed to load scheduled items", err)
	}

	suggestions, err := srs.RankRefresh(toScheduledItems(pairs), now, threshold, s.params)
	if err != nil {
		return nil, NewServiceError("refresh_suggestions", "refresh ranking failed", err)
	}

	log.Debug("refresh suggestions ranked",
		slog.Int("candidates", len(pairs)),
		slog.Int("suggested", len(suggestions)),
		slog.Float64("threshold", threshold))
	return suggestions, nil
}

// SubmitReview implements Service.SubmitReview
// It normalizes the raw outcome, applies the review to the item's state under
// a row lock, persists the new state, and appends the audit event. The whole
// update is atomic: a failure at any step leaves the schedule untouched.
func (s *serviceImpl) SubmitReview(
	ctx context.Context,
	itemID uuid.UUID,
	raw domain.RawOutcome,
	now time.Time,
) (*domain.SchedulingState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	quality, err := srs.NormalizeOutcome(raw)
	if err != nil {
		log.Warn("invalid raw outcome",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, NewServiceError("submit_review", "invalid outcome", err)
	}

	var newState *domain.SchedulingState

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		stateStore := s.stateStore.WithTx(tx)

		state, err := stateStore.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		newState, err = s.srsService.ApplyReview(state, quality, now)
		if err != nil {
			return err
		}

		if err := stateStore.Update(ctx, newState); err != nil {
			return err
		}

		event, err := domain.NewReviewEvent(itemID, now, raw, quality, newState)
		if err != nil {
			return err
		}

		return s.eventStore.WithTx(tx).Append(ctx, event)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("review submitted for unknown item",
				slog.String("item_id", itemID.String()))
			return nil, ErrItemNotFound
		}
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, NewServiceError("submit_review", "failed to apply review", err)
	}

	log.Info("review applied",
		slog.String("item_id", itemID.String()),
		slog.Float64("quality", quality),
		slog.Int("interval_days", newState.IntervalDays),
		slog.Time("next_due_at", newState.NextDueAt))
	return newState, nil
}

// PostponeItem implements Service.PostponeItem
// It pushes the item's next due time forward without touching its statistics.
func (s *serviceImpl) PostponeItem(
	ctx context.Context,
	itemID uuid.UUID,
	days int,
	now time.Time,
) (*domain.SchedulingState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var newState *domain.SchedulingState

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		stateStore := s.stateStore.WithTx(tx)

		state, err := stateStore.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}

		newState, err = s.srsService.Postpone(state, days, now)
		if err != nil {
			return err
		}

		return stateStore.Update(ctx, newState)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		log.Error("failed to postpone item",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, NewServiceError("postpone_item", "failed to postpone", err)
	}

	log.Info("item postponed",
		slog.String("item_id", itemID.String()),
		slog.Int("days", days),
		slog.Time("next_due_at", newState.NextDueAt))
	return newState, nil
}

// ItemHistory implements Service.ItemHistory
// It returns the item's review events, oldest first.
func (s *serviceImpl) ItemHistory(
	ctx context.Context,
	itemID uuid.UUID,
	limit, offset int,
) ([]*domain.ReviewEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.itemStore.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		log.Error("failed to load item",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, NewServiceError("item_history", "failed to load item", err)
	}

	events, err := s.eventStore.ListByItem(ctx, itemID, limit, offset)
	if err != nil {
		log.Error("failed to list review events",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, NewServiceError("item_history", "failed to load events", err)
	}

	return events, nil
}

// toScheduledItems converts store pairs into the engine's input shape.
func toScheduledItems(pairs []store.ItemWithState) []srs.ScheduledItem {
	items := make([]srs.ScheduledItem, len(pairs))
	for i, p := range pairs {
		items[i] = srs.ScheduledItem{Item: p.Item, State: p.State}
	}
	return items
}
