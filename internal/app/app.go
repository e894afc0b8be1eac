package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/carlosrabelo/tabula/internal/config"
	"github.com/carlosrabelo/tabula/internal/db"
	apierrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/infrastructure"
	customMiddleware "github.com/carlosrabelo/tabula/internal/middleware"
	"github.com/carlosrabelo/tabula/internal/repository"
	"github.com/carlosrabelo/tabula/internal/services"
	handlers "github.com/carlosrabelo/tabula/internal/transport/http"
)

// Application wires the read API: config, stores, services, router and
// server
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Version       string
	Router        *chi.Mux
	Server        *http.Server
	DB            *sql.DB
	DataService   *services.DataService
	HealthService *services.HealthService
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DatasetMetrics
	ErrorHandler  *apierrors.ErrorHandler
}

// NewApplication creates the application. The history database is opened
// when paths.HistoryDB is set.
func NewApplication(cfg *config.Config, paths *config.Paths, version string, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.NewDatasetMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Version:       version,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
	}

	if err := a.initializeServices(); err != nil {
		a.closeStores()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

func (a *Application) initializeServices() error {
	var history repository.RunRepo
	if a.Paths.HistoryDB != "" {
		database, err := db.OpenDB(a.Paths.HistoryDB)
		if err != nil {
			return apierrors.NewStorageError("failed to open history database", err).
				WithContext("path", a.Paths.HistoryDB)
		}
		a.DB = database
		history = repository.NewSQLiteRunRepo(database)
	}

	a.DataService = services.NewDataService(a.Paths.OutputDir, history, a.Logger)
	a.HealthService = services.NewHealthService(a.Version, a.Paths.OutputDir, a.DB, a.Logger)
	return nil
}

// setupRouter configures the chi router with middleware and routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	if a.OTelProviders != nil {
		r.Use(customMiddleware.NewTelemetry(a.OTelProviders, a.Metrics).Handler)
	}
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if rl := a.Config.Server.RateLimit; rl.Enabled && rl.RPS > 0 {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.ErrorHandler, a.Logger).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get("/healthz", healthHandler.LivenessCheck)
	r.Get("/readyz", healthHandler.ReadinessCheck)

	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/version", healthHandler.Version)
		r.Mount("/datasets", handlers.NewDataHandler(a.DataService, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/runs", handlers.NewRunsHandler(a.DataService, a.Logger, a.ErrorHandler).Routes())
	})

	r.Handle("/datasets/*", handlers.DatasetFiles("/datasets/", a.Paths.OutputDir))

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start serves in the background. A listener failure cancels ctx through
// cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("addr", a.Server.Addr),
		slog.String("output_dir", a.Paths.OutputDir),
		slog.Bool("history", a.DB != nil),
		slog.String("version", a.Version))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()
	return nil
}

// Stop gracefully stops the server and releases stores and providers
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown error: %w", err))
		}
	}
	a.closeStores()

	a.Logger.InfoContext(ctx, "Server shutdown complete")
	return errors.Join(errs...)
}

func (a *Application) closeStores() {
	if a.DB == nil {
		return
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Error closing history database", slog.String("error", err.Error()))
	}
	a.DB = nil
}

// Run serves until ctx is cancelled or the process receives SIGINT/SIGTERM
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx, stop); err != nil {
		return err
	}
	<-ctx.Done()
	return a.Stop(ctx)
}
