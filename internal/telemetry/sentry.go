// Package telemetry provides opt-in error tracking through Sentry
package telemetry

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/errors"
	"github.com/tphakala/mealplan/internal/logger"
)

// DefaultFlushTimeout bounds how long shutdown waits for queued events
const DefaultFlushTimeout = 2 * time.Second

var sentryInitialized atomic.Bool

// InitSentry initializes the Sentry SDK and routes enhanced errors to it.
// It does nothing unless telemetry is enabled and a DSN is configured.
func InitSentry(settings *conf.Settings) error {
	return initSentry(settings, nil)
}

// initSentry allows tests to inject a transport
func initSentry(settings *conf.Settings, transport sentry.Transport) error {
	log := logger.Global().Module("telemetry")

	if !settings.Telemetry.Enabled || settings.Telemetry.DSN == "" {
		log.Debug("Sentry telemetry is disabled")
		return nil
	}

	sampleRate := settings.Telemetry.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Telemetry.DSN,
		SampleRate:       sampleRate,
		Environment:      settings.Telemetry.Environment,
		Release:          fmt.Sprintf("mealplan@%s", settings.Version),
		AttachStacktrace: false,
		ServerName:       "", // keep the hostname out of events
		BeforeSend:       applyPrivacyFilters,
		Transport:        transport,
	})
	if err != nil {
		return errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	sentryInitialized.Store(true)

	log.Info("Sentry telemetry initialized",
		logger.String("environment", settings.Telemetry.Environment),
		logger.String("release", settings.Version))
	return nil
}

// IsEnabled reports whether Sentry has been initialized
func IsEnabled() bool {
	return sentryInitialized.Load()
}

// Flush waits for queued events, up to timeout
func Flush(timeout time.Duration) bool {
	if !IsEnabled() {
		return true
	}
	return sentry.Flush(timeout)
}

// Shutdown detaches the error reporter and flushes pending events
func Shutdown() {
	if !sentryInitialized.Swap(false) {
		return
	}
	errors.SetTelemetryReporter(nil)
	sentry.Flush(DefaultFlushTimeout)
}

// applyPrivacyFilters strips host and user details from an event
func applyPrivacyFilters(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
	}
	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}
	return event
}
