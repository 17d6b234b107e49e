package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/revisehq/revise-api/internal/api"
	"github.com/revisehq/revise-api/internal/api/shared"
	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/domain/srs"
	"github.com/revisehq/revise-api/internal/service/auth"
	"github.com/revisehq/revise-api/internal/service/review"
	"github.com/revisehq/revise-api/internal/service/revision"
	"github.com/revisehq/revise-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "InvalidToken",
			err:            auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "ExpiredToken",
			err:            auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "ItemNotFound",
			err:            review.ErrItemNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "SessionNotFound",
			err:            revision.ErrSessionNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "UnknownItemInSession",
			err:            fmt.Errorf("%w: abc", revision.ErrUnknownItem),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "StoreNotFound",
			err:            store.ErrNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Duplicate",
			err:            store.ErrDuplicate,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "SessionFinished",
			err:            revision.ErrSessionFinished,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "InvalidRawOutcome",
			err:            domain.ErrInvalidRawOutcome,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "InvalidQuality",
			err:            srs.ErrInvalidQuality,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "InvalidDays",
			err:            srs.ErrInvalidDays,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "NoItemsDue",
			err:            review.ErrNoItemsDue,
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "WrappedInServiceError",
			err: review.NewServiceError("submit_review", "failed to load state",
				review.ErrItemNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "CorruptState",
			err:            srs.ErrCorruptState,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "UnknownError",
			err:            errors.New("something unexpected"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expectedStatus, api.MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "NilError",
			err:             nil,
			expectedMessage: "An unexpected error occurred",
		},
		{
			name:            "ItemNotFound",
			err:             review.ErrItemNotFound,
			expectedMessage: "Item not found",
		},
		{
			name:            "SessionFinished",
			err:             revision.ErrSessionFinished,
			expectedMessage: "Session already finished",
		},
		{
			name:            "InvalidRawOutcome",
			err:             domain.ErrInvalidRawOutcome,
			expectedMessage: "Invalid review outcome",
		},
		{
			name:            "InternalDetailsHidden",
			err:             errors.New("pq: connection refused host=db.internal"),
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expectedMessage, api.GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	t.Run("FieldValidationError", func(t *testing.T) {
		t.Parallel()

		req := api.CreateItemRequest{ContentRef: ""}
		err := shared.Validate.Struct(req)

		msg := api.SanitizeValidationError(err)
		assert.Contains(t, msg, "ContentRef")
		assert.Contains(t, msg, "required field")
		assert.NotContains(t, msg, "CreateItemRequest", "struct names should not leak")
	})

	t.Run("RangeTag", func(t *testing.T) {
		t.Parallel()

		req := api.PostponeRequest{Days: 9000}
		err := shared.Validate.Struct(req)

		msg := api.SanitizeValidationError(err)
		assert.Contains(t, msg, "Days")
		assert.Contains(t, msg, "value too large")
	})

	t.Run("NonValidationError", func(t *testing.T) {
		t.Parallel()

		msg := api.SanitizeValidationError(errors.New("boom"))
		assert.Equal(t, "Validation error", msg)
	})
}
