package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/revisehq/revise-api/internal/api/shared"
	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/redact"
	"github.com/revisehq/revise-api/internal/service/review"
)

// ItemHandler handles item-related HTTP requests
type ItemHandler struct {
	reviewService review.Service
	logger        *slog.Logger
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(reviewService review.Service, logger *slog.Logger) *ItemHandler {
	if logger == nil {
		panic("logger cannot be nil for ItemHandler")
	}

	return &ItemHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "item_handler")),
	}
}

// CreateItemRequest represents the request body for registering an item
type CreateItemRequest struct {
	ContentRef string   `json:"content_ref" validate:"required,max=512"`
	Tags       []string `json:"tags" validate:"omitempty,dive,min=1,max=64"`
}

// CreateItem handles POST /items requests
// It registers a new item with the scheduling engine, due immediately.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateItemRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	item, err := h.reviewService.RegisterItem(r.Context(), req.ContentRef, req.Tags)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to register item"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("item registered",
		slog.String("item_id", item.ID.String()),
		slog.String("content_ref", item.ContentRef))
	shared.RespondWithJSON(w, r, http.StatusCreated, itemToResponse(item))
}

// GetItem handles GET /items/{id} requests
// It returns the item together with its current scheduling state.
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDFromPath(h.logger, w, r)
	if !ok {
		return
	}

	scheduled, err := h.reviewService.GetItem(r.Context(), itemID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, scheduledItemToResponse(*scheduled))
}

// ListItems handles GET /items requests
// Supports limit and offset query parameters.
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	items, err := h.reviewService.ListItems(r.Context(), limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to list items", err)
		return
	}

	responses := make([]ItemResponse, len(items))
	for i, item := range items {
		responses[i] = itemToResponse(item)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// DeleteItem handles DELETE /items/{id} requests
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	itemID, ok := itemIDFromPath(h.logger, w, r)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteItem(r.Context(), itemID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("item deleted", slog.String("item_id", itemID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// GetItemHistory handles GET /items/{id}/events requests
// It returns the item's review events, oldest first.
func (h *ItemHandler) GetItemHistory(w http.ResponseWriter, r *http.Request) {
	itemID, ok := itemIDFromPath(h.logger, w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	events, err := h.reviewService.ItemHistory(r.Context(), itemID, limit, offset)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to load review history"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	responses := make([]ReviewEventResponse, len(events))
	for i, event := range events {
		responses[i] = eventToResponse(event)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// itemIDFromPath extracts and parses the item ID from the URL path. On
// failure it writes the error response and returns false.
func itemIDFromPath(fallback *slog.Logger, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	log := logger.FromContextOrDefault(r.Context(), fallback)

	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		log.Warn("item ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Item ID is required")
		return uuid.Nil, false
	}

	itemID, err := uuid.Parse(pathID)
	if err != nil {
		log.Warn("invalid item ID format", slog.String("item_id", pathID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item ID format")
		return uuid.Nil, false
	}

	return itemID, true
}

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
