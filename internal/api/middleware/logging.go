// Package middleware provides HTTP middleware components for the meal plan server.
package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tphakala/mealplan/internal/logger"
	"github.com/tphakala/mealplan/internal/observability/metrics"
)

// NewRequestLogger creates a request logging middleware on top of echo's
// RequestLoggerWithConfig. When httpMetrics is non-nil every request is also
// counted by method, route pattern and status.
func NewRequestLogger(log logger.Logger, httpMetrics *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return NewRequestLoggerWithSkipper(log, httpMetrics, nil)
}

// NewRequestLoggerWithSkipper creates a request logging middleware with a custom skipper.
func NewRequestLoggerWithSkipper(log logger.Logger, httpMetrics *metrics.HTTPMetrics, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:      skipper,
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if httpMetrics != nil {
				// route pattern, not the raw URI, to keep label cardinality bounded
				route := c.Path()
				if route == "" {
					route = "unmatched"
				}
				httpMetrics.RecordHTTPRequest(v.Method, route, strconv.Itoa(v.Status), v.Latency.Seconds())
			}

			if log == nil {
				return nil
			}

			fields := []logger.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.String("ip", v.RemoteIP),
				logger.String("user_agent", v.UserAgent),
				logger.Int64("latency_ms", v.Latency.Milliseconds()),
			}

			reqLog := log.WithContext(c.Request().Context())
			switch {
			case v.Error != nil:
				fields = append(fields, logger.Error(v.Error))
				reqLog.Warn("request", fields...)
			case v.Status >= 500:
				reqLog.Warn("request", fields...)
			default:
				reqLog.Info("request", fields...)
			}
			return nil
		},
	})
}
