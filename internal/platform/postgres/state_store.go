package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/store"
)

// PostgresSchedulingStateStore implements the store.SchedulingStateStore
// interface using a PostgreSQL database as the storage backend.
type PostgresSchedulingStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSchedulingStateStore creates a new PostgreSQL implementation of
// the SchedulingStateStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSchedulingStateStore(db store.DBTX, logger *slog.Logger) *PostgresSchedulingStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSchedulingStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "scheduling_state_store")),
	}
}

// Ensure PostgresSchedulingStateStore implements store.SchedulingStateStore interface
var _ store.SchedulingStateStore = (*PostgresSchedulingStateStore)(nil)

const stateColumns = `item_id, ease_factor, interval_days, streak, review_count,
	last_reviewed_at, next_due_at, decay_half_life_days, created_at, updated_at`

// Create implements store.SchedulingStateStore.Create
// It saves scheduling state for a newly registered item.
// Returns store.ErrDuplicate if state already exists for the item.
// Returns store.ErrInvalidEntity if the item does not exist.
func (s *PostgresSchedulingStateStore) Create(ctx context.Context, state *domain.SchedulingState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("scheduling state validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()))
		return err
	}

	query := `
		INSERT INTO scheduling_states (` + stateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		state.ItemID,
		state.EaseFactor,
		state.IntervalDays,
		state.Streak,
		state.ReviewCount,
		nullableTime(state.LastReviewedAt),
		state.NextDueAt,
		state.DecayHalfLifeDays,
		state.CreatedAt,
		state.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolationCode:
				log.Warn("duplicate scheduling state during creation",
					slog.String("item_id", state.ItemID.String()))
				return store.ErrDuplicate
			case pgForeignKeyViolationCode:
				log.Warn("foreign key violation during scheduling state creation",
					slog.String("item_id", state.ItemID.String()))
				return fmt.Errorf("%w: item with ID %s not found",
					store.ErrInvalidEntity, state.ItemID)
			}
		}

		log.Error("failed to create scheduling state",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()))
		return err
	}

	log.Info("scheduling state created successfully",
		slog.String("item_id", state.ItemID.String()))
	return nil
}

// Get implements store.SchedulingStateStore.Get
// It retrieves scheduling state by item ID without any row locking.
// Returns store.ErrStateNotFound if no state exists for the item.
func (s *PostgresSchedulingStateStore) Get(ctx context.Context, itemID uuid.UUID) (*domain.SchedulingState, error) {
	query := `SELECT ` + stateColumns + ` FROM scheduling_states WHERE item_id = $1`
	return s.getWithQuery(ctx, query, itemID)
}

// GetForUpdate implements store.SchedulingStateStore.GetForUpdate
// It retrieves scheduling state with a row-level lock using SELECT FOR
// UPDATE; use within a transaction when applying a review.
// Returns store.ErrStateNotFound if no state exists for the item.
func (s *PostgresSchedulingStateStore) GetForUpdate(ctx context.Context, itemID uuid.UUID) (*domain.SchedulingState, error) {
	query := `SELECT ` + stateColumns + ` FROM scheduling_states WHERE item_id = $1 FOR UPDATE`
	return s.getWithQuery(ctx, query, itemID)
}

func (s *PostgresSchedulingStateStore) getWithQuery(
	ctx context.Context,
	query string,
	itemID uuid.UUID,
) (*domain.SchedulingState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	state, err := scanState(s.db.QueryRowContext(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("scheduling state not found", slog.String("item_id", itemID.String()))
			return nil, store.ErrStateNotFound
		}
		log.Error("failed to get scheduling state",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, err
	}

	return state, nil
}

// Update implements store.SchedulingStateStore.Update
// It replaces the stored scheduling state for the item.
// Returns store.ErrStateNotFound if no state exists for the item.
func (s *PostgresSchedulingStateStore) Update(ctx context.Context, state *domain.SchedulingState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("scheduling state validation failed during update",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()))
		return err
	}

	query := `
		UPDATE scheduling_states
		SET ease_factor = $2,
			interval_days = $3,
			streak = $4,
			review_count = $5,
			last_reviewed_at = $6,
			next_due_at = $7,
			decay_half_life_days = $8,
			updated_at = $9
		WHERE item_id = $1
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		state.ItemID,
		state.EaseFactor,
		state.IntervalDays,
		state.Streak,
		state.ReviewCount,
		nullableTime(state.LastReviewedAt),
		state.NextDueAt,
		state.DecayHalfLifeDays,
		state.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to update scheduling state",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("scheduling state not found for update",
			slog.String("item_id", state.ItemID.String()))
		return store.ErrStateNotFound
	}

	log.Debug("scheduling state updated successfully",
		slog.String("item_id", state.ItemID.String()),
		slog.Float64("ease_factor", state.EaseFactor),
		slog.Int("interval_days", state.IntervalDays),
		slog.Time("next_due_at", state.NextDueAt))
	return nil
}

// ListWithItems implements store.SchedulingStateStore.ListWithItems
// It retrieves all items joined with their scheduling state.
// Returns an empty slice if no items exist.
func (s *PostgresSchedulingStateStore) ListWithItems(ctx context.Context) ([]store.ItemWithState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT i.id, i.content_ref, i.tags, i.created_at,
			s.item_id, s.ease_factor, s.interval_days, s.streak, s.review_count,
			s.last_reviewed_at, s.next_due_at, s.decay_half_life_days,
			s.created_at, s.updated_at
		FROM review_items i
		JOIN scheduling_states s ON s.item_id = i.id
		ORDER BY s.next_due_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query items with state", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	pairs := []store.ItemWithState{}
	for rows.Next() {
		var item domain.ReviewItem
		var tags []byte
		var state domain.SchedulingState
		var lastReviewed sql.NullTime

		err := rows.Scan(
			&item.ID,
			&item.ContentRef,
			&tags,
			&item.CreatedAt,
			&state.ItemID,
			&state.EaseFactor,
			&state.IntervalDays,
			&state.Streak,
			&state.ReviewCount,
			&lastReviewed,
			&state.NextDueAt,
			&state.DecayHalfLifeDays,
			&state.CreatedAt,
			&state.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan item with state", slog.String("error", err.Error()))
			return nil, err
		}

		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &item.Tags); err != nil {
				return nil, err
			}
		}
		if lastReviewed.Valid {
			state.LastReviewedAt = lastReviewed.Time
		}

		pairs = append(pairs, store.ItemWithState{Item: &item, State: &state})
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return pairs, nil
}

// WithTx implements store.SchedulingStateStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresSchedulingStateStore) WithTx(tx *sql.Tx) store.SchedulingStateStore {
	return &PostgresSchedulingStateStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanState reads one scheduling state row.
func scanState(row rowScanner) (*domain.SchedulingState, error) {
	var state domain.SchedulingState
	var lastReviewed sql.NullTime

	err := row.Scan(
		&state.ItemID,
		&state.EaseFactor,
		&state.IntervalDays,
		&state.Streak,
		&state.ReviewCount,
		&lastReviewed,
		&state.NextDueAt,
		&state.DecayHalfLifeDays,
		&state.CreatedAt,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReviewed.Valid {
		state.LastReviewedAt = lastReviewed.Time
	}

	return &state, nil
}

// nullableTime maps the zero time (never reviewed) to SQL NULL.
func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
