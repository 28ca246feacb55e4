package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	mw "github.com/tphakala/mealplan/internal/api/middleware"
	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/datastore"
	"github.com/tphakala/mealplan/internal/importer"
	"github.com/tphakala/mealplan/internal/logger"
	"github.com/tphakala/mealplan/internal/observability"
	"github.com/tphakala/mealplan/internal/observability/metrics"
)

// Server is the HTTP server of the meal plan service.
// It owns the echo instance, the middleware stack and the API controller.
type Server struct {
	echo     *echo.Echo
	config   *Config
	settings *conf.Settings
	logger   logger.Logger

	dataStore datastore.Interface
	importer  *importer.Importer
	metrics   *observability.Metrics
	mealCache *MealCache

	apiController *Controller

	errCh     chan error
	startTime time.Time
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithLogger sets the logger for the server.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithDataStore sets the datastore for the server.
func WithDataStore(ds datastore.Interface) ServerOption {
	return func(s *Server) {
		s.dataStore = ds
	}
}

// WithImporter sets the importer used by the upload endpoint.
func WithImporter(imp *importer.Importer) ServerOption {
	return func(s *Server) {
		s.importer = imp
	}
}

// WithMetrics sets the observability metrics for the server.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithSharedMealCache sets the meal query cache, so that importer hooks
// created before the server can flush it.
func WithSharedMealCache(mc *MealCache) ServerOption {
	return func(s *Server) {
		s.mealCache = mc
	}
}

// New creates a new HTTP server with the given settings and options.
func New(settings *conf.Settings, opts ...ServerOption) (*Server, error) {
	config := ConfigFromSettings(settings)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	s := &Server{
		config:    config,
		settings:  settings,
		errCh:     make(chan error, 1),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = GetLogger()
	}
	if s.dataStore == nil {
		return nil, fmt.Errorf("datastore is required")
	}
	if s.importer == nil {
		return nil, fmt.Errorf("importer is required")
	}
	if s.mealCache == nil {
		s.mealCache = NewMealCache(config.CacheTTL)
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}

	s.logger.Info("HTTP server initialized",
		logger.String("address", config.Address()),
		logger.String("body_limit", config.BodyLimit),
		logger.Bool("debug_routes", config.DebugRoutes),
		logger.Bool("metrics", config.MetricsEnabled))

	return s, nil
}

// setupMiddleware configures the echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())

	var httpMetrics *metrics.HTTPMetrics
	if s.metrics != nil {
		httpMetrics = s.metrics.HTTP
	}
	s.echo.Use(mw.NewRequestLogger(s.logger, httpMetrics))

	securityConfig := mw.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = s.config.AllowedOrigins
	s.echo.Use(mw.NewCORS(securityConfig))

	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewSecureHeaders())
}

// setupRoutes creates the API controller, which registers all routes.
func (s *Server) setupRoutes() error {
	opts := []Option{
		WithControllerLogger(s.logger),
		WithControllerMetrics(s.metrics),
		WithMealCache(s.mealCache),
	}

	controller, err := NewController(s.echo, s.dataStore, s.importer, s.settings, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize API controller: %w", err)
	}
	s.apiController = controller

	s.logger.Debug("Routes initialized", logger.Int("count", len(s.echo.Routes())))
	return nil
}

// Start begins serving HTTP requests in a background goroutine and returns
// immediately. Serve errors are delivered on Errors().
func (s *Server) Start() {
	go func() {
		if err := s.startBlocking(); err != nil {
			s.logger.Error("Server error", logger.Error(err))
			s.errCh <- err
		}
	}()

	s.logger.Info("HTTP server starting", logger.String("address", s.config.Address()))
}

// startBlocking serves until the server is shut down.
func (s *Server) startBlocking() error {
	err := s.echo.Start(s.config.Address())
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Errors returns a channel receiving the error that stopped the server, if any.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// StartWithGracefulShutdown starts the server and shuts it down on SIGINT/SIGTERM
// or when ctx is cancelled.
func (s *Server) StartWithGracefulShutdown(ctx context.Context) error {
	s.Start()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		s.logger.Info("Shutdown signal received, initiating graceful shutdown")
	case err := <-s.errCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if s.apiController != nil {
		s.apiController.Shutdown()
	}

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Error("Error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("Server shutdown complete",
		logger.Duration("uptime", time.Since(s.startTime)))
	return nil
}

// Controller returns the API controller.
func (s *Server) Controller() *Controller {
	return s.apiController
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// MealCache returns the meal query cache shared with the controller.
func (s *Server) MealCache() *MealCache {
	return s.mealCache
}

// Config returns the effective server configuration.
func (s *Server) Config() *Config {
	return s.config
}
