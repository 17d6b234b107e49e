package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/store"
)

// PostgresReviewEventStore implements the store.ReviewEventStore interface
// using a PostgreSQL database as the storage backend. The table is
// append-only; nothing here updates or deletes rows.
type PostgresReviewEventStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewEventStore creates a new PostgreSQL implementation of the
// ReviewEventStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresReviewEventStore(db store.DBTX, logger *slog.Logger) *PostgresReviewEventStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewEventStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_event_store")),
	}
}

// Ensure PostgresReviewEventStore implements store.ReviewEventStore interface
var _ store.ReviewEventStore = (*PostgresReviewEventStore)(nil)

// Append implements store.ReviewEventStore.Append
// It records a review event with its raw signal and state snapshot as JSONB.
// Returns store.ErrInvalidEntity if the item does not exist.
func (s *PostgresReviewEventStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		log.Warn("review event validation failed during append",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return err
	}

	raw, err := json.Marshal(event.Raw)
	if err != nil {
		return err
	}
	snapshot, err := json.Marshal(event.State)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO review_events (id, item_id, occurred_at, raw_outcome, quality, state_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.ItemID,
		event.OccurredAt,
		raw,
		event.Quality,
		snapshot,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
			log.Warn("foreign key violation during event append",
				slog.String("event_id", event.ID.String()),
				slog.String("item_id", event.ItemID.String()))
			return fmt.Errorf("%w: item with ID %s not found",
				store.ErrInvalidEntity, event.ItemID)
		}

		log.Error("failed to append review event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()),
			slog.String("item_id", event.ItemID.String()))
		return err
	}

	log.Debug("review event appended",
		slog.String("event_id", event.ID.String()),
		slog.String("item_id", event.ItemID.String()),
		slog.Float64("quality", event.Quality))
	return nil
}

// ListByItem implements store.ReviewEventStore.ListByItem
// It retrieves the events for an item, oldest first.
// Returns an empty slice if the item has no events.
func (s *PostgresReviewEventStore) ListByItem(
	ctx context.Context,
	itemID uuid.UUID,
	limit, offset int,
) ([]*domain.ReviewEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 100 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, item_id, occurred_at, raw_outcome, quality, state_snapshot
		FROM review_events
		WHERE item_id = $1
		ORDER BY occurred_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, itemID, limit, offset)
	if err != nil {
		log.Error("failed to query review events",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	events := []*domain.ReviewEvent{}
	for rows.Next() {
		var event domain.ReviewEvent
		var raw, snapshot []byte

		err := rows.Scan(
			&event.ID,
			&event.ItemID,
			&event.OccurredAt,
			&raw,
			&event.Quality,
			&snapshot,
		)
		if err != nil {
			log.Error("failed to scan review event row", slog.String("error", err.Error()))
			return nil, err
		}

		if err := json.Unmarshal(raw, &event.Raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(snapshot, &event.State); err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return events, nil
}

// WithTx implements store.ReviewEventStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresReviewEventStore) WithTx(tx *sql.Tx) store.ReviewEventStore {
	return &PostgresReviewEventStore{
		db:     tx,
		logger: s.logger,
	}
}
