package api

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/singleflight"

	mw "github.com/tphakala/mealplan/internal/api/middleware"
	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/datastore"
	"github.com/tphakala/mealplan/internal/importer"
	"github.com/tphakala/mealplan/internal/logger"
	"github.com/tphakala/mealplan/internal/observability"
)

// Controller manages the meal plan endpoints and their dependencies.
type Controller struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Importer *importer.Importer
	Settings *conf.Settings

	logger    logger.Logger
	mealCache *MealCache
	mealLoads singleflight.Group // coalesces concurrent cache misses per key
	metrics   *observability.Metrics
	startTime time.Time

	writeLimiter echo.MiddlewareFunc
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithControllerLogger overrides the api module logger.
func WithControllerLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithControllerMetrics attaches Prometheus metrics; they are exposed at /metrics
// when metrics.enabled is set.
func WithControllerMetrics(m *observability.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithMealCache shares a meal query cache with the caller, typically so an
// importer hook can flush it.
func WithMealCache(mc *MealCache) Option {
	return func(c *Controller) {
		if mc != nil {
			c.mealCache = mc
		}
	}
}

// NewController creates a new API controller and registers its routes on e.
func NewController(e *echo.Echo, ds datastore.Interface, imp *importer.Importer, settings *conf.Settings, opts ...Option) (*Controller, error) {
	return NewControllerWithOptions(e, ds, imp, settings, true, opts...)
}

// NewControllerWithOptions creates a new API controller. Tests pass
// initializeRoutes=false to call handlers directly.
func NewControllerWithOptions(e *echo.Echo, ds datastore.Interface, imp *importer.Importer,
	settings *conf.Settings, initializeRoutes bool, opts ...Option) (*Controller, error) {

	if e == nil {
		return nil, fmt.Errorf("echo instance must not be nil")
	}
	if ds == nil {
		return nil, fmt.Errorf("datastore must not be nil")
	}
	if imp == nil {
		return nil, fmt.Errorf("importer must not be nil")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings must not be nil")
	}

	c := &Controller{
		Echo:      e,
		DS:        ds,
		Importer:  imp,
		Settings:  settings,
		logger:    GetLogger(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.mealCache == nil {
		c.mealCache = NewMealCache(settings.WebServer.CacheTTL)
	}
	c.writeLimiter = mw.NewRateLimiter(WriteRateLimit, WriteRateBurst)

	if initializeRoutes {
		c.initRoutes()
	}

	return c, nil
}

// initRoutes registers all handlers on the root of the echo instance.
func (c *Controller) initRoutes() {
	routeInitializers := []struct {
		name    string
		enabled bool
		fn      func()
	}{
		{"health routes", true, c.initHealthRoutes},
		{"meal routes", true, c.initMealRoutes},
		{"completion routes", true, c.initCompletionRoutes},
		{"upload routes", true, c.initUploadRoutes},
		{"debug routes", c.Settings.WebServer.DebugRoutes, c.initDebugRoutes},
		{"metrics routes", c.Settings.Metrics.Enabled && c.metrics != nil, c.initMetricsRoutes},
	}

	for _, initializer := range routeInitializers {
		if !initializer.enabled {
			c.logger.Debug("Skipping disabled routes", logger.String("routes", initializer.name))
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("Panic during route initialization",
						logger.String("routes", initializer.name),
						logger.Any("panic", r))
				}
			}()

			initializer.fn()
			c.logger.Debug("Initialized routes", logger.String("routes", initializer.name))
		}()
	}
}

func (c *Controller) initHealthRoutes() {
	c.Echo.GET("/health", c.HealthCheck)
}

func (c *Controller) initMetricsRoutes() {
	c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
}

// HealthCheck reports service status and database connectivity.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":     "healthy",
		"version":    c.Settings.Version,
		"build_date": c.Settings.BuildDate,
		"timestamp":  time.Now().Format(time.RFC3339),
	}

	uptime := time.Since(c.startTime)
	response["uptime"] = uptime.String()
	response["uptime_seconds"] = uptime.Seconds()

	if c.metrics != nil && c.metrics.Importer != nil {
		if last := c.metrics.Importer.LastImportTime(); !last.IsZero() {
			response["last_import"] = last.Format(time.RFC3339)
		}
	}

	response["database_status"] = "connected"
	if err := c.DS.Ping(ctx.Request().Context()); err != nil {
		response["status"] = "degraded"
		response["database_status"] = "disconnected"
		response["database_error"] = err.Error()
		return ctx.JSON(http.StatusServiceUnavailable, response)
	}

	return ctx.JSON(http.StatusOK, response)
}

// InvalidateMealCache drops all cached meal query responses.
func (c *Controller) InvalidateMealCache() {
	c.mealCache.Flush()
}

// Shutdown releases resources held by the controller.
func (c *Controller) Shutdown() {
	// go-cache's janitor stops when the cache is garbage collected
	c.mealCache.Flush()
	c.logger.Debug("API controller shut down")
}

// ErrorResponse is the JSON body of 5xx responses.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // matches the server log entry
}

// MessageResponse is the JSON body of 4xx and simple success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID returns an 8 character random identifier
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	maxIdx := big.NewInt(int64(len(charset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, maxIdx)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			b[i] = charset[time.Now().UnixNano()%int64(len(charset))]
			continue
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// HandleError logs err and writes an ErrorResponse with the given status.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	fields := []logger.Field{
		logger.String("correlation_id", errorResp.CorrelationID),
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	c.logger.WithContext(ctx.Request().Context()).Error("API error", fields...)

	return ctx.JSON(code, errorResp)
}

// badRequest writes a 400 carrying only a message, with no state change.
func (c *Controller) badRequest(ctx echo.Context, message string) error {
	c.logger.Info("Bad request",
		logger.String("path", ctx.Request().URL.Path),
		logger.String("message", message))
	return ctx.JSON(http.StatusBadRequest, MessageResponse{Message: message})
}
