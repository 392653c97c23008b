package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/realitycheck-api/internal/analytics"
	"github.com/phrazzld/realitycheck-api/internal/api"
	"github.com/phrazzld/realitycheck-api/internal/config"
	"github.com/phrazzld/realitycheck-api/internal/events"
	"github.com/phrazzld/realitycheck-api/internal/platform/metrics"
	"github.com/phrazzld/realitycheck-api/internal/platform/sqlstore"
	"github.com/phrazzld/realitycheck-api/internal/service"
	"github.com/phrazzld/realitycheck-api/internal/service/auth"
	"github.com/phrazzld/realitycheck-api/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	clock  analytics.Clock

	// Stores
	decisionStore store.DecisionStore
	groupStore    store.GroupStore

	// Services
	jwtService       auth.JWTService
	authenticator    *auth.OwnerAuthenticator
	decisionService  service.DecisionService
	groupService     service.GroupService
	analyticsService service.AnalyticsService

	eventEmitter *events.InMemoryEventEmitter
	metrics      *metrics.Metrics
}

// newApplication creates a new application instance with all dependencies initialized.
// The database must already be migrated.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		clock:   analytics.SystemClock{},
		metrics: metrics.New(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.authenticator, err = auth.NewOwnerAuthenticator(cfg.Auth, auth.NewBcryptVerifier(), app.jwtService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authenticator: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	dialect := storeDialect(cfg.Database.Driver)
	app.decisionStore = sqlstore.NewDecisionStore(db, dialect, logger)
	app.groupStore = sqlstore.NewGroupStore(db, dialect, logger)
	tx := store.NewTransactor(db)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	analyticsService, err := service.NewAnalyticsService(app.decisionStore, logger,
		service.WithAggregatorOptions(
			analytics.WithClock(app.clock),
			analytics.WithGracePeriod(cfg.Analytics.StreakGracePeriodDays),
			analytics.WithObserver(app.metrics),
		),
		service.WithRefreshObserver(app.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics service: %w", err)
	}
	app.analyticsService = analyticsService
	// Every decision change invalidates the analytics snapshot.
	app.eventEmitter.RegisterHandler(analyticsService)

	app.decisionService, err = service.NewDecisionService(app.decisionStore, tx, app.eventEmitter, app.clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision service: %w", err)
	}
	app.groupService, err = service.NewGroupService(app.groupStore, tx, app.eventEmitter, app.clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create group service: %w", err)
	}

	if err := app.groupService.EnsureDefaults(ctx); err != nil {
		return nil, fmt.Errorf("failed to create default groups: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupRouter builds the HTTP handler for the application.
func (app *application) setupRouter() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Logger:          app.logger,
		Decisions:       app.decisionService,
		Groups:          app.groupService,
		Analytics:       app.analyticsService,
		Authenticator:   app.authenticator,
		JWTService:      app.jwtService,
		Clock:           app.clock,
		SimilarLimit:    app.config.Analytics.SimilarLimit,
		DB:              app.db,
		RequestObserver: app.metrics,
		MetricsHandler:  promhttp.Handler(),
	})
}

// Run serves HTTP until ctx is canceled, then shuts down and releases resources.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
