// Package api provides the HTTP query service for the meal plan: the echo
// server, its middleware stack and the JSON endpoints.
package api

import (
	"fmt"
	"time"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/logger"
)

// GetLogger returns the api package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("api")
}

// Default constants for the HTTP server.
const (
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second // uploads are imported within the request
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = "10M"
	DefaultCacheTTL        = 5 * time.Minute

	mealLoadTimeout = 15 * time.Second

	// writes per client IP: sustained rate per second and burst
	WriteRateLimit = 2.0
	WriteRateBurst = 10
)

// Config holds the HTTP server configuration derived from settings.
type Config struct {
	Host string
	Port string

	AllowedOrigins []string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BodyLimit string // e.g. "10M"

	CacheTTL       time.Duration
	DebugRoutes    bool
	MetricsEnabled bool
	Debug          bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            "5000",
		AllowedOrigins:  []string{"*"},
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		IdleTimeout:     DefaultIdleTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       DefaultBodyLimit,
		CacheTTL:        DefaultCacheTTL,
	}
}

// ConfigFromSettings creates a Config from the application settings.
func ConfigFromSettings(settings *conf.Settings) *Config {
	cfg := DefaultConfig()

	cfg.Host = settings.WebServer.Host
	if settings.WebServer.Port != "" {
		cfg.Port = settings.WebServer.Port
	}
	if settings.WebServer.UploadLimit != "" {
		cfg.BodyLimit = settings.WebServer.UploadLimit
	}
	if settings.WebServer.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = settings.WebServer.ShutdownTimeout
	}
	if settings.WebServer.CacheTTL > 0 {
		cfg.CacheTTL = settings.WebServer.CacheTTL
	}
	cfg.DebugRoutes = settings.WebServer.DebugRoutes
	cfg.MetricsEnabled = settings.Metrics.Enabled
	cfg.Debug = settings.Debug

	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.BodyLimit == "" {
		return fmt.Errorf("body limit is required")
	}
	return nil
}

// Address returns the full address string for the server to listen on.
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// String returns a human-readable representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("Server Config: address=%s, body_limit=%s, debug_routes=%v, metrics=%v",
		c.Address(), c.BodyLimit, c.DebugRoutes, c.MetricsEnabled)
}
