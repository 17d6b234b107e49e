package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/revisehq/revise-api/internal/config"
	"github.com/revisehq/revise-api/internal/domain/srs"
	"github.com/revisehq/revise-api/internal/platform/postgres"
	"github.com/revisehq/revise-api/internal/service/auth"
	"github.com/revisehq/revise-api/internal/service/review"
	"github.com/revisehq/revise-api/internal/service/revision"
	"github.com/revisehq/revise-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	itemStore  store.ItemStore
	stateStore store.SchedulingStateStore
	eventStore store.ReviewEventStore

	// Service interfaces
	jwtService    auth.JWTService
	srsService    srs.Service
	reviewService review.Service

	// In-memory revision sessions
	sessionRegistry *revision.Registry

	srsParams *srs.Params
}

// newApplication creates a new application instance with all dependencies
// initialized. The caller owns the database connection; cleanup closes it.
func newApplication(
	cfg *config.Config,
	appLogger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	srsParams := srs.NewParams(srs.ParamsConfig{
		PassThreshold:   cfg.SRS.PassThreshold,
		MaxHalfLifeDays: cfg.SRS.MaxHalfLifeDays,
		MaxIntervalDays: cfg.SRS.MaxIntervalDays,
	})
	srsService := srs.NewServiceWithParams(srsParams)

	itemStore := postgres.NewPostgresItemStore(db, appLogger)
	stateStore := postgres.NewPostgresSchedulingStateStore(db, appLogger)
	eventStore := postgres.NewPostgresReviewEventStore(db, appLogger)

	reviewService := review.NewService(
		db,
		itemStore,
		stateStore,
		eventStore,
		srsService,
		srsParams,
		appLogger,
	)

	return &application{
		config:          cfg,
		logger:          appLogger,
		db:              db,
		itemStore:       itemStore,
		stateStore:      stateStore,
		eventStore:      eventStore,
		jwtService:      jwtService,
		srsService:      srsService,
		reviewService:   reviewService,
		sessionRegistry: revision.NewRegistry(),
		srsParams:       srsParams,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection",
				slog.String("error", err.Error()))
		}
	}
}
