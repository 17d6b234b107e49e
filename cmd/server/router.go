package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/revisehq/revise-api/internal/api"
	apiMiddleware "github.com/revisehq/revise-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	itemHandler := api.NewItemHandler(app.reviewService, app.logger)
	reviewHandler := api.NewReviewHandler(
		app.reviewService,
		app.config.SRS.RetentionThreshold,
		app.logger,
	)
	sessionHandler := api.NewSessionHandler(
		app.db,
		app.stateStore,
		app.eventStore,
		app.srsService,
		app.srsParams,
		app.sessionRegistry,
		app.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Item registration and lifecycle
		r.Post("/items", itemHandler.CreateItem)
		r.Get("/items", itemHandler.ListItems)
		r.Get("/items/{id}", itemHandler.GetItem)
		r.Delete("/items/{id}", itemHandler.DeleteItem)
		r.Get("/items/{id}/events", itemHandler.GetItemHistory)

		// Review outcomes and schedule adjustments
		r.Post("/items/{id}/review", reviewHandler.SubmitReview)
		r.Post("/items/{id}/postpone", reviewHandler.PostponeItem)
		r.Get("/reviews/next", reviewHandler.GetNextItem)
		r.Get("/reviews/due", reviewHandler.ListDue)
		r.Get("/reviews/refresh", reviewHandler.ListRefreshSuggestions)

		// Revision sessions
		r.Post("/sessions", sessionHandler.StartSession)
		r.Get("/sessions/{id}", sessionHandler.GetSession)
		r.Post("/sessions/{id}/outcomes", sessionHandler.SubmitOutcome)
		r.Post("/sessions/{id}/complete", sessionHandler.CompleteSession)
		r.Post("/sessions/{id}/abandon", sessionHandler.AbandonSession)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
