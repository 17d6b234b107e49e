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
	"github.com/revisehq/revise-api/internal/domain/srs"
	"github.com/revisehq/revise-api/internal/service/review"
)

const testRetentionThreshold = 0.7

func newReviewRouter(svc review.Service) *chi.Mux {
	handler := api.NewReviewHandler(svc, testRetentionThreshold, newTestLogger())

	r := chi.NewRouter()
	r.Get("/reviews/next", handler.GetNextItem)
	r.Get("/reviews/due", handler.ListDue)
	r.Get("/reviews/refresh", handler.ListRefreshSuggestions)
	r.Post("/items/{id}/review", handler.SubmitReview)
	r.Post("/items/{id}/postpone", handler.PostponeItem)
	return r
}

func TestGetNextItemEndpoint(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		scheduled := newScheduledItem(t, now, -48*time.Hour)
		mockSvc.On("GetNextItem", mock.Anything, mock.Anything).Return(&scheduled, nil)

		req := httptest.NewRequest(http.MethodGet, "/reviews/next", nil)
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp api.ScheduledItemResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, scheduled.Item.ID.String(), resp.Item.ID)
	})

	t.Run("NothingDue", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("GetNextItem", mock.Anything, mock.Anything).
			Return(nil, review.ErrNoItemsDue)

		req := httptest.NewRequest(http.MethodGet, "/reviews/next", nil)
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})
}

func TestListDue(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("LimitForwarded", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		due := []srs.ScheduledItem{
			newScheduledItem(t, now, -72*time.Hour),
			newScheduledItem(t, now, -24*time.Hour),
		}
		mockSvc.On("DueItems", mock.Anything, mock.Anything, 2).Return(due, nil)

		req := httptest.NewRequest(http.MethodGet, "/reviews/due?limit=2", nil)
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp []api.ScheduledItemResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, due[0].Item.ID.String(), resp[0].Item.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("NegativeLimitRejected", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("DueItems", mock.Anything, mock.Anything, -1).
			Return(nil, srs.ErrInvalidArgument)

		req := httptest.NewRequest(http.MethodGet, "/reviews/due?limit=-1", nil)
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("EmptyDueSet", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("DueItems", mock.Anything, mock.Anything, 0).
			Return([]srs.ScheduledItem{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/reviews/due", nil)
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})
}

func TestListRefreshSuggestions(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("DefaultThreshold", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		scheduled := newScheduledItem(t, now, -240*time.Hour)
		suggestions := []srs.RefreshSuggestion{
			{ScheduledItem: scheduled, Retention: 0.42},
		}
		mockSvc.On("RefreshSuggestions", mock.Anything, mock.Anything, testRetentionThreshold).
			Return(suggestions, nil)

		req := httptest.NewRequest(http.MethodGet, "/reviews/refresh", nil)
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp []api.RefreshSuggestionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.InDelta(t, 0.42, resp[0].Retention, 1e-9)
		mockSvc.AssertExpectations(t)
	})

	t.Run("ExplicitThreshold", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("RefreshSuggestions", mock.Anything, mock.Anything, 0.5).
			Return([]srs.RefreshSuggestion{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/reviews/refresh?threshold=0.5", nil)
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("MalformedThreshold", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)

		req := httptest.NewRequest(http.MethodGet, "/reviews/refresh?threshold=high", nil)
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockSvc.AssertNotCalled(t, "RefreshSuggestions")
	})

	t.Run("OutOfRangeThreshold", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("RefreshSuggestions", mock.Anything, mock.Anything, 1.5).
			Return(nil, srs.ErrInvalidArgument)

		req := httptest.NewRequest(http.MethodGet, "/reviews/refresh?threshold=1.5", nil)
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSubmitReviewEndpoint(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("SelfRating", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		scheduled := newScheduledItem(t, now, 0)
		mockSvc.On("SubmitReview", mock.Anything, scheduled.Item.ID,
			mock.MatchedBy(func(raw domain.RawOutcome) bool {
				return raw.SelfRating != nil && *raw.SelfRating == 4.5 &&
					raw.Correct == nil && raw.Latency == nil
			}), mock.Anything).
			Return(scheduled.State, nil)

		body, _ := json.Marshal(api.SubmitReviewRequest{SelfRating: floatPtr(4.5)})
		req := httptest.NewRequest(http.MethodPost,
			"/items/"+scheduled.Item.ID.String()+"/review", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp api.SchedulingStateResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, scheduled.Item.ID.String(), resp.ItemID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("CorrectWithLatency", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		scheduled := newScheduledItem(t, now, 0)
		mockSvc.On("SubmitReview", mock.Anything, scheduled.Item.ID,
			mock.MatchedBy(func(raw domain.RawOutcome) bool {
				return raw.Correct != nil && *raw.Correct &&
					raw.Latency != nil && *raw.Latency == domain.LatencyFast
			}), mock.Anything).
			Return(scheduled.State, nil)

		req := httptest.NewRequest(http.MethodPost,
			"/items/"+scheduled.Item.ID.String()+"/review",
			bytes.NewReader([]byte(`{"correct":true,"latency":"fast"}`)))
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("RatingOutOfRange", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)

		req := httptest.NewRequest(http.MethodPost,
			"/items/"+uuid.NewString()+"/review",
			bytes.NewReader([]byte(`{"self_rating":7}`)))
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockSvc.AssertNotCalled(t, "SubmitReview")
	})

	t.Run("AmbiguousOutcome", func(t *testing.T) {
		t.Parallel()

		// Both forms at once passes request validation; the domain rejects it.
		mockSvc := new(MockReviewService)
		mockSvc.On("SubmitReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, domain.ErrInvalidRawOutcome)

		req := httptest.NewRequest(http.MethodPost,
			"/items/"+uuid.NewString()+"/review",
			bytes.NewReader([]byte(`{"self_rating":3,"correct":true,"latency":"fast"}`)))
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid review outcome")
	})

	t.Run("UnknownItem", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		mockSvc.On("SubmitReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, review.ErrItemNotFound)

		req := httptest.NewRequest(http.MethodPost,
			"/items/"+uuid.NewString()+"/review",
			bytes.NewReader([]byte(`{"self_rating":3}`)))
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestPostponeItemEndpoint(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)
		scheduled := newScheduledItem(t, now, 72*time.Hour)
		mockSvc.On("PostponeItem", mock.Anything, scheduled.Item.ID, 3, mock.Anything).
			Return(scheduled.State, nil)

		body, _ := json.Marshal(api.PostponeRequest{Days: 3})
		req := httptest.NewRequest(http.MethodPost,
			"/items/"+scheduled.Item.ID.String()+"/postpone", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("ZeroDaysRejected", func(t *testing.T) {
		t.Parallel()

		mockSvc := new(MockReviewService)

		req := httptest.NewRequest(http.MethodPost,
			"/items/"+uuid.NewString()+"/postpone",
			bytes.NewReader([]byte(`{"days":0}`)))
		rr := httptest.NewRecorder()

		newReviewRouter(mockSvc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockSvc.AssertNotCalled(t, "PostponeItem")
	})
}
