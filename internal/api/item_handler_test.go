package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/revisehq/revise-api/internal/api"
	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/service/review"
)

func newItemRouter(svc review.Service) *chi.Mux {
	handler := api.NewItemHandler(svc, newTestLogger())

	r := chi.NewRouter()
	r.Post("/items", handler.CreateItem)
	r.Get("/items", handler.ListItems)
	r.Get("/items/{id}", handler.GetItem)
	r.Delete("/items/{id}", handler.DeleteItem)
	r.Get("/items/{id}/events", handler.GetItemHistory)
	return r
}

func TestCreateItem(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		item, err := domain.NewReviewItem("note://vault/go-interfaces", []string{"go"})
		require.NoError(t, err)
		mockSvc.On("RegisterItem", mock.Anything, "note://vault/go-interfaces", []string{"go"}).
			Return(item, nil)

		body, _ := json.Marshal(api.CreateItemRequest{
			ContentRef: "note://vault/go-interfaces",
			Tags:       []string{"go"},
		})
		req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp api.ItemResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, item.ID.String(), resp.ID)
		assert.Equal(t, "note://vault/go-interfaces", resp.ContentRef)
		mockSvc.AssertExpectations(t)
	})

	t.Run("MissingContentRef", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)

		req := httptest.NewRequest(http.MethodPost, "/items",
			bytes.NewReader([]byte(`{"tags":["go"]}`)))
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockSvc.AssertNotCalled(t, "RegisterItem")
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)

		req := httptest.NewRequest(http.MethodPost, "/items",
			bytes.NewReader([]byte(`{not json`)))
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockSvc.AssertNotCalled(t, "RegisterItem")
	})

	t.Run("ServiceFailureIsSanitized", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("RegisterItem", mock.Anything, "note://x", mock.Anything).
			Return(nil, review.NewServiceError("register_item", "insert failed",
				assert.AnError))

		body, _ := json.Marshal(api.CreateItemRequest{ContentRef: "note://x"})
		req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "insert failed")
		assert.Contains(t, rr.Body.String(), "Failed to register item")
	})
}

func TestGetItemEndpoint(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		scheduled := newScheduledItem(t, now, 0)
		mockSvc.On("GetItem", mock.Anything, scheduled.Item.ID).Return(&scheduled, nil)

		req := httptest.NewRequest(http.MethodGet, "/items/"+scheduled.Item.ID.String(), nil)
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp api.ScheduledItemResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, scheduled.Item.ID.String(), resp.Item.ID)
		assert.Nil(t, resp.State.LastReviewedAt, "never-reviewed items omit last_reviewed_at")
	})

	t.Run("NotFound", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("GetItem", mock.Anything, mock.Anything).
			Return(nil, review.ErrItemNotFound)

		req := httptest.NewRequest(http.MethodGet, "/items/"+uuid.NewString(), nil)
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)

		req := httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockSvc.AssertNotCalled(t, "GetItem")
	})
}

func TestListItems(t *testing.T) {
	t.Parallel()

	t.Run("PassesPagination", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		item, err := domain.NewReviewItem("note://a", nil)
		require.NoError(t, err)
		mockSvc.On("ListItems", mock.Anything, 10, 20).
			Return([]*domain.ReviewItem{item}, nil)

		req := httptest.NewRequest(http.MethodGet, "/items?limit=10&offset=20", nil)
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp []api.ItemResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("DefaultsApply", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("ListItems", mock.Anything, 50, 0).
			Return([]*domain.ReviewItem{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteItemEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		itemID := uuid.New()
		mockSvc.On("DeleteItem", mock.Anything, itemID).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/items/"+itemID.String(), nil)
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("DeleteItem", mock.Anything, mock.Anything).
			Return(review.ErrItemNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/items/"+uuid.NewString(), nil)
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestGetItemHistory(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		scheduled := newScheduledItem(t, now, 0)
		rating := 5.0
		event, err := domain.NewReviewEvent(scheduled.Item.ID, now,
			domain.RawOutcome{SelfRating: &rating}, 5.0, scheduled.State)
		require.NoError(t, err)
		mockSvc.On("ItemHistory", mock.Anything, scheduled.Item.ID, 100, 0).
			Return([]*domain.ReviewEvent{event}, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/items/"+scheduled.Item.ID.String()+"/events", nil)
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp []api.ReviewEventResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, event.ID.String(), resp[0].ID)
		assert.InDelta(t, 5.0, resp[0].Quality, 1e-9)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("ItemHistory", mock.Anything, mock.Anything, 100, 0).
			Return(nil, review.ErrItemNotFound)

		req := httptest.NewRequest(http.MethodGet,
			"/items/"+uuid.NewString()+"/events", nil)
		rr := httptest.NewRecorder()

		newItemRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
