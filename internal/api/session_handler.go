package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/revisehq/revise-api/internal/api/shared"
	"github.com/revisehq/revise-api/internal/domain"
	"github.com/revisehq/revise-api/internal/domain/srs"
	"github.com/revisehq/revise-api/internal/platform/logger"
	"github.com/revisehq/revise-api/internal/redact"
	"github.com/revisehq/revise-api/internal/service/revision"
	"github.com/revisehq/revise-api/internal/store"
)

// SessionHandler handles revision session HTTP requests. Sessions live in
// memory behind the registry; the scheduling state and review events each
// outcome produces are persisted through the stores, so an abandoned or
// crashed session never loses applied reviews.
type SessionHandler struct {
	db         *sql.DB
	stateStore store.SchedulingStateStore
	eventStore store.ReviewEventStore
	srsService srs.Service
	params     *srs.Params
	registry   *revision.Registry
	logger     *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
// If params is nil, default scheduling parameters are used.
func NewSessionHandler(
	db *sql.DB,
	stateStore store.SchedulingStateStore,
	eventStore store.ReviewEventStore,
	srsService srs.Service,
	params *srs.Params,
	registry *revision.Registry,
	logger *slog.Logger,
) *SessionHandler {
	if db == nil {
		panic("db cannot be nil for SessionHandler")
	}
	if stateStore == nil {
		panic("stateStore cannot be nil for SessionHandler")
	}
	if eventStore == nil {
		panic("eventStore cannot be nil for SessionHandler")
	}
	if srsService == nil {
		panic("srsService cannot be nil for SessionHandler")
	}
	if registry == nil {
		panic("registry cannot be nil for SessionHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for SessionHandler")
	}
	if params == nil {
		params = srs.NewDefaultParams()
	}

	return &SessionHandler{
		db:         db,
		stateStore: stateStore,
		eventStore: eventStore,
		srsService: srsService,
		params:     params,
		registry:   registry,
		logger:     logger.With(slog.String("component", "session_handler")),
	}
}

// StartSessionRequest represents the request body for starting a session
type StartSessionRequest struct {
	// Size bounds the session queue; 0 means all due items.
	Size int `json:"size" validate:"gte=0"`
}

// StartSession handles POST /sessions requests
// It snapshots the current due set into a new in-memory session.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	// An empty body means default size.
	req := StartSessionRequest{}
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			log.Warn("invalid request format", slog.String("error", redact.Error(err)))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if err := shared.Validate.Struct(req); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
			return
		}
	}

	pairs, err := h.stateStore.ListWithItems(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to start session", err)
		return
	}

	pool := make([]srs.ScheduledItem, len(pairs))
	for i, p := range pairs {
		pool[i] = srs.ScheduledItem{Item: p.Item, State: p.State}
	}

	session, err := revision.NewSession(h.srsService, h.params, pool, time.Now().UTC(), req.Size)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to start session"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	h.registry.Put(session)

	log.Info("revision session started",
		slog.String("session_id", session.ID().String()),
		slog.Int("queue_size", session.Remaining()))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// GetSession handles GET /sessions/{id} requests
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// SessionOutcomeRequest represents the request body for submitting an
// outcome within a session. The outcome forms mirror SubmitReviewRequest.
type SessionOutcomeRequest struct {
	ItemID     string   `json:"item_id" validate:"required,uuid"`
	SelfRating *float64 `json:"self_rating" validate:"omitempty,gte=0,lte=5"`
	Correct    *bool    `json:"correct"`
	Latency    *string  `json:"latency" validate:"omitempty,oneof=fast slow"`
}

// SessionOutcomeResponse reports the result of one applied outcome
type SessionOutcomeResponse struct {
	Quality   float64                 `json:"quality"`
	State     SchedulingStateResponse `json:"state"`
	Requeued  bool                    `json:"requeued"`
	Remaining int                     `json:"remaining"`
}

// SubmitOutcome handles POST /sessions/{id}/outcomes requests
// It applies a review outcome within the session, persists the resulting
// scheduling state and review event, and re-drills failed items.
func (h *SessionHandler) SubmitOutcome(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req SessionOutcomeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid item ID format")
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

	result, err := session.SubmitOutcome(itemID, raw, time.Now().UTC())
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to submit outcome"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	// Persist what the session computed. The in-memory queue has already
	// advanced; a persistence failure is reported to the client and the
	// session is not rewound.
	err = store.RunInTransaction(r.Context(), h.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := h.stateStore.WithTx(tx).Update(ctx, result.State); err != nil {
			return err
		}
		return h.eventStore.WithTx(tx).Append(ctx, result.Event)
	})
	if err != nil {
		log.Error("failed to persist session outcome",
			slog.String("session_id", session.ID().String()),
			slog.String("item_id", itemID.String()),
			slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to persist outcome", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionOutcomeResponse{
		Quality:   result.Quality,
		State:     stateToResponse(result.State),
		Requeued:  result.Requeued,
		Remaining: result.Remaining,
	})
}

// CompleteSession handles POST /sessions/{id}/complete requests
// It finalizes the session and returns aggregate statistics.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	stats, err := session.Complete(time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.registry.Remove(session.ID())

	log.Info("revision session completed",
		slog.String("session_id", session.ID().String()),
		slog.Int("items_reviewed", stats.ItemsReviewed),
		slog.Float64("pass_rate", stats.PassRate))
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// AbandonSession handles POST /sessions/{id}/abandon requests
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	session, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	if err := session.Abandon(time.Now().UTC()); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.registry.Remove(session.ID())

	log.Info("revision session abandoned", slog.String("session_id", session.ID().String()))
	w.WriteHeader(http.StatusNoContent)
}

// sessionFromPath resolves the session referenced by the URL path. On
// failure it writes the error response and returns false.
func (h *SessionHandler) sessionFromPath(
	w http.ResponseWriter,
	r *http.Request,
) (*revision.Session, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	pathID := chi.URLParam(r, "id")
	sessionID, err := uuid.Parse(pathID)
	if err != nil {
		log.Warn("invalid session ID format", slog.String("session_id", pathID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID format")
		return nil, false
	}

	session, err := h.registry.Get(sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return nil, false
	}

	return session, true
}
