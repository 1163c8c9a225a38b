package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"surveypulse/internal/config"
	apierrors "surveypulse/internal/errors"
	"surveypulse/internal/infrastructure"
	"surveypulse/internal/metrics"
	custommw "surveypulse/internal/middleware"
	"surveypulse/internal/services"
	transport "surveypulse/internal/transport/http"
)

// Application wires configuration, services and the HTTP server.
type Application struct {
	cfg     *config.Config
	logger  *slog.Logger
	paths   *config.Paths
	metrics *metrics.Metrics

	surveyService *services.SurveyService
	healthService *services.HealthService

	router chi.Router
	server *http.Server
}

// NewApplication builds the application from loaded configuration.
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	paths := config.NewPaths(wd, cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	a := &Application{
		cfg:     cfg,
		logger:  logger,
		paths:   paths,
		metrics: metrics.New(),
	}

	a.surveyService = services.NewSurveyService(cfg.Survey, logger, a.metrics)
	a.healthService = services.NewHealthService(a.surveyService)

	a.setupRouter()
	a.createServer()

	return a, nil
}

// LoadDataset loads and cleans the survey file. Runs inside an errgroup so
// future data sources (lookup refreshes, additional files) load
// concurrently.
func (a *Application) LoadDataset(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.surveyService.Load(ctx)
	})
	return g.Wait()
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StripSlashes)
	r.Use(custommw.StructuredLogger(a.logger))
	r.Use(custommw.Recoverer(a.logger))
	r.Use(custommw.Timeout(a.cfg.Server.RequestTimeout, a.logger))
	r.Use(a.metrics.Middleware)
	r.Use(custommw.Compress(5))

	if a.cfg.Security.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   a.cfg.Security.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-Export-Rows"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if a.cfg.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.cfg.Security.RateLimit.RPS,
			a.cfg.Security.RateLimit.Burst,
			a.logger,
		)
		r.Use(limiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.logger)
	surveyHandler := transport.NewSurveyHandler(a.surveyService, a.logger, errorHandler)
	healthHandler := transport.NewHealthHandler(a.healthService, a.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/version", healthHandler.Version)
		r.Mount("/survey", surveyHandler.Routes())
	})

	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	a.router = r
}

func (a *Application) createServer() {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}
}

// Router exposes the configured router, used by handler-level tests.
func (a *Application) Router() chi.Router {
	return a.router
}

// Run loads the dataset, starts the HTTP server and blocks until a
// shutdown signal arrives.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.LoadDataset(ctx); err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", slog.Int("port", a.cfg.Server.Port))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	infrastructure.CloseLogFile()
	a.logger.Info("server stopped")
	return nil
}
