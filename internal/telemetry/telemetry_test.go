package telemetry

import (
	"fmt"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mealplan/internal/conf"
	"github.com/tphakala/mealplan/internal/errors"
)

// Tests in this file mutate the global Sentry hub and error reporter; they do not run in parallel.

func TestInitSentryDisabled(t *testing.T) {
	settings := &conf.Settings{Telemetry: conf.TelemetrySettings{Enabled: true}}

	require.NoError(t, InitSentry(settings))
	assert.False(t, IsEnabled(), "no DSN means no telemetry")
	assert.Nil(t, errors.GetTelemetryReporter())
	assert.True(t, Flush(DefaultFlushTimeout))
}

func TestInitSentryReportsEnhancedErrors(t *testing.T) {
	transport := NewMockTransport()
	settings := &conf.Settings{
		Version: "test",
		Telemetry: conf.TelemetrySettings{
			Enabled:     true,
			DSN:         "https://public@example.com/1",
			Environment: "test",
			SampleRate:  1,
		},
	}

	require.NoError(t, initSentry(settings, transport))
	t.Cleanup(Shutdown)
	assert.True(t, IsEnabled())

	_ = errors.New(fmt.Errorf("database is locked")).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()
	_ = errors.ValidationError("day must be positive")
	require.True(t, Flush(DefaultFlushTimeout))

	events := transport.GetEvents()
	require.Len(t, events, 1, "validation errors are not reported")
	assert.Equal(t, "datastore", events[0].Tags["component"])
	assert.Equal(t, sentry.LevelError, events[0].Level)
	assert.Empty(t, events[0].ServerName)
}

func TestShutdownDetachesReporter(t *testing.T) {
	transport := NewMockTransport()
	settings := &conf.Settings{Telemetry: conf.TelemetrySettings{Enabled: true, DSN: "https://public@example.com/1"}}

	require.NoError(t, initSentry(settings, transport))
	Shutdown()

	assert.False(t, IsEnabled())
	assert.Nil(t, errors.GetTelemetryReporter())
}

func TestApplyPrivacyFilters(t *testing.T) {
	event := &sentry.Event{
		ServerName: "kitchen-pi",
		User:       sentry.User{ID: "42"},
		Tags:       map[string]string{"hostname": "kitchen-pi", "component": "api"},
		Contexts:   map[string]sentry.Context{"os": {"name": "linux"}},
	}

	filtered := applyPrivacyFilters(event, nil)
	assert.Empty(t, filtered.ServerName)
	assert.Empty(t, filtered.User.ID)
	assert.NotContains(t, filtered.Tags, "hostname")
	assert.Equal(t, "api", filtered.Tags["component"])
	assert.NotContains(t, filtered.Contexts, "os")
}
