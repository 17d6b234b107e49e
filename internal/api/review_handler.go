package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/revisehq/revise-api/internal/api/shared"
	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/redact"
	"github.com/revisehq/revise-api/internal/service/review"
)

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	reviewService review.Service
	// defaultRetentionThreshold is used for refresh suggestions when the
	// request does not carry an explicit threshold.
	defaultRetentionThreshold float64
	logger                    *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(
	reviewService review.Service,
	defaultRetentionThreshold float64,
	logger *slog.Logger,
) *ReviewHandler {
	if logger == nil {
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		reviewService:             reviewService,
		defaultRetentionThreshold: defaultRetentionThreshold,
		logger:                    logger.With(slog.String("component", "review_handler")),
	}
}

// GetNextItem handles GET /reviews/next requests
// It retrieves the most urgent item due for review.
func (h *ReviewHandler) GetNextItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	next, err := h.reviewService.GetNextItem(r.Context(), time.Now().UTC())

	// Special case: nothing due right now
	if errors.Is(err, review.ErrNoItemsDue) {
		log.Debug("no items due for review")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get next review item"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("next review item selected", slog.String("item_id", next.Item.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, scheduledItemToResponse(*next))
}

// ListDue handles GET /reviews/due requests
// It returns the ordered due set, optionally truncated by the limit query
// parameter.
func (h *ReviewHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)

	due, err := h.reviewService.DueItems(r.Context(), time.Now().UTC(), limit)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to select due items"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	responses := make([]ScheduledItemResponse, len(due))
	for i, item := range due {
		responses[i] = scheduledItemToResponse(item)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// ListRefreshSuggestions handles GET /reviews/refresh requests
// It surfaces items whose estimated retention has fallen below the threshold
// query parameter (the configured default applies when absent).
func (h *ReviewHandler) ListRefreshSuggestions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	threshold := h.defaultRetentionThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Warn("invalid threshold parameter", slog.String("threshold", raw))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid threshold format")
			return
		}
		threshold = parsed
	}

	suggestions, err := h.reviewService.RefreshSuggestions(r.Context(), time.Now().UTC(), threshold)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to rank refresh suggestions"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	responses := make([]RefreshSuggestionResponse, len(suggestions))
	for i, s := range suggestions {
		responses[i] = RefreshSuggestionResponse{
			ScheduledItemResponse: scheduledItemToResponse(s.ScheduledItem),
			Retention:             s.Retention,
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// SubmitReviewRequest represents the request body for submitting a review
// outcome. Exactly one of the two forms must be populated: a self rating, or
// a correctness judgement with a latency bucket.
type SubmitReviewRequest struct {
	SelfRating *float64 `json:"self_rating" validate:"omitempty,gte=0,lte=5"`
	Correct    *bool    `json:"correct"`
	Latency    *string  `json:"latency" validate:"omitempty,oneof=fast slow"`
}

// SubmitReview handles POST /items/{id}/review requests
// It applies a review outcome to the item's schedule.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	itemID, ok := itemIDFromPath(h.logger, w, r)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("item_id", itemID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	raw := domain.RawOutcome{
		SelfRating: req.SelfRating,
		Correct:    req.Correct,
	}
	if req.Latency != nil {
		bucket := domain.LatencyBucket(*req.Latency)
		raw.Latency = &bucket
	}

	state, err := h.reviewService.SubmitReview(r.Context(), itemID, raw, time.Now().UTC())
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to submit review"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("review submitted",
		slog.String("item_id", itemID.String()),
		slog.Int("interval_days", state.IntervalDays))
	shared.RespondWithJSON(w, r, http.StatusOK, stateToResponse(state))
}

// PostponeRequest represents the request body for postponing an item
type PostponeRequest struct {
	Days int `json:"days" validate:"required,gte=1,lte=365"`
}

// PostponeItem handles POST /items/{id}/postpone requests
// It pushes the item's next due time forward without touching its statistics.
func (h *ReviewHandler) PostponeItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	itemID, ok := itemIDFromPath(h.logger, w, r)
	if !ok {
		return
	}

	var req PostponeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("item_id", itemID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	state, err := h.reviewService.PostponeItem(r.Context(), itemID, req.Days, time.Now().UTC())
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to postpone item"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("item postponed",
		slog.String("item_id", itemID.String()),
		slog.Int("days", req.Days))
	shared.RespondWithJSON(w, r, http.StatusOK, stateToResponse(state))
}
