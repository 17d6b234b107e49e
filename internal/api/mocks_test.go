package api_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/domain/srs"
	"github.com/revisehq/revise-api/internal/store"
)

// MockReviewService is a mock implementation of the review.Service interface
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) RegisterItem(
	ctx context.Context,
	contentRef string,
	tags []string,
) (*domain.ReviewItem, error) {
	args := m.Called(ctx, contentRef, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewItem), args.Error(1)
}

func (m *MockReviewService) GetItem(
	ctx context.Context,
	itemID uuid.UUID,
) (*srs.ScheduledItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*srs.ScheduledItem), args.Error(1)
}

func (m *MockReviewService) ListItems(
	ctx context.Context,
	limit, offset int,
) ([]*domain.ReviewItem, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewItem), args.Error(1)
}

func (m *MockReviewService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockReviewService) GetNextItem(
	ctx context.Context,
	now time.Time,
) (*srs.ScheduledItem, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*srs.ScheduledItem), args.Error(1)
}

func (m *MockReviewService) DueItems(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]srs.ScheduledItem, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]srs.ScheduledItem), args.Error(1)
}

func (m *MockReviewService) RefreshSuggestions(
	ctx context.Context,
	now time.Time,
	threshold float64,
) ([]srs.RefreshSuggestion, error) {
	args := m.Called(ctx, now, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]srs.RefreshSuggestion), args.Error(1)
}

func (m *MockReviewService) SubmitReview(
	ctx context.Context,
	itemID uuid.UUID,
	raw domain.RawOutcome,
	now time.Time,
) (*domain.SchedulingState, error) {
	args := m.Called(ctx, itemID, raw, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchedulingState), args.Error(1)
}

func (m *MockReviewService) PostponeItem(
	ctx context.Context,
	itemID uuid.UUID,
	days int,
	now time.Time,
) (*domain.SchedulingState, error) {
	args := m.Called(ctx, itemID, days, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchedulingState), args.Error(1)
}

func (m *MockReviewService) ItemHistory(
	ctx context.Context,
	itemID uuid.UUID,
	limit, offset int,
) ([]*domain.ReviewEvent, error) {
	args := m.Called(ctx, itemID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewEvent), args.Error(1)
}

// MockStateStore is a mock implementation of store.SchedulingStateStore
type MockStateStore struct {
	mock.Mock
}

func (m *MockStateStore) Create(ctx context.Context, state *domain.SchedulingState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateStore) Get(ctx context.Context, itemID uuid.UUID) (*domain.SchedulingState, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchedulingState), args.Error(1)
}

func (m *MockStateStore) GetForUpdate(
	ctx context.Context,
	itemID uuid.UUID,
) (*domain.SchedulingState, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchedulingState), args.Error(1)
}

func (m *MockStateStore) Update(ctx context.Context, state *domain.SchedulingState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateStore) ListWithItems(ctx context.Context) ([]store.ItemWithState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.ItemWithState), args.Error(1)
}

func (m *MockStateStore) WithTx(tx *sql.Tx) store.SchedulingStateStore {
	m.Called(tx)
	return m
}

// MockEventStore is a mock implementation of store.ReviewEventStore
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventStore) ListByItem(
	ctx context.Context,
	itemID uuid.UUID,
	limit, offset int,
) ([]*domain.ReviewEvent, error) {
	args := m.Called(ctx, itemID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewEvent), args.Error(1)
}

func (m *MockEventStore) WithTx(tx *sql.Tx) store.ReviewEventStore {
	m.Called(tx)
	return m
}

// noopDriver backs a *sql.DB whose transactions are no-ops; the store mocks
// intercept all queries.
type noopDriver struct{}

func (noopDriver) Open(name string) (driver.Conn, error) { return noopConn{}, nil }

type noopConn struct{}

func (noopConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (noopConn) Close() error { return nil }
func (noopConn) Begin() (driver.Tx, error) { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error { return nil }
func (noopTx) Rollback() error { return nil }

func init() {
	sql.Register("api_noop", noopDriver{})
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("api_noop", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newScheduledItem builds an item and state pair due at the given offset.
func newScheduledItem(t *testing.T, now time.Time, dueOffset time.Duration) srs.ScheduledItem {
	t.Helper()

	item, err := domain.NewReviewItem("note://"+uuid.NewString(), []string{"test"})
	require.NoError(t, err)

	state, err := domain.NewSchedulingState(item.ID, now.Add(dueOffset))
	require.NoError(t, err)

	return srs.ScheduledItem{Item: item, State: state}
}

func floatPtr(f float64) *float64 { return &f }
