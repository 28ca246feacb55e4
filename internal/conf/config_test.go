package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper isolates tests from the global viper instance
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	resetViper(t)

	settings, err := LoadFile(writeConfig(t, "debug: false\n"))
	require.NoError(t, err)

	assert.Equal(t, "5000", settings.WebServer.Port)
	assert.True(t, settings.WebServer.DebugRoutes)
	assert.Equal(t, 10*time.Second, settings.WebServer.ShutdownTimeout)
	assert.Equal(t, 5*time.Minute, settings.WebServer.CacheTTL)
	assert.Equal(t, DatabaseSQLite, settings.Database.Type)
	assert.Equal(t, "data/meal_plan.xlsx", settings.Import.Path)
	assert.Equal(t, StartupImportAlways, settings.Import.Startup)
	assert.Equal(t, "https://picsum.photos/seed/meal-%d/400/300", settings.Images.URLTemplate)
	assert.Same(t, settings, GetSettings())
}

func TestLoadFileOverrides(t *testing.T) {
	resetViper(t)

	path := writeConfig(t, `
webserver:
  port: "8080"
  debugroutes: false
import:
  path: /srv/plan.XLSX
  startup: IfEmpty
database:
  type: MySQL
  mysql:
    host: db
    database: meals
`)
	settings, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", settings.WebServer.Address())
	assert.False(t, settings.WebServer.DebugRoutes)
	assert.Equal(t, StartupImportIfEmpty, settings.Import.Startup)
	assert.Equal(t, DatabaseMySQL, settings.Database.Type)
}

func TestLoadFileEnvironment(t *testing.T) {
	resetViper(t)
	t.Setenv("MEALPLAN_PORT", "9090")
	t.Setenv("MEALPLAN_IMPORT_STARTUP", "never")

	settings, err := LoadFile(writeConfig(t, "debug: true\n"))
	require.NoError(t, err)

	assert.Equal(t, "9090", settings.WebServer.Port)
	assert.Equal(t, StartupImportNever, settings.Import.Startup)
	assert.True(t, settings.Debug)
}

func TestLoadFileInvalidEnvironment(t *testing.T) {
	resetViper(t)
	t.Setenv("MEALPLAN_PORT", "not-a-port")

	_, err := LoadFile(writeConfig(t, "debug: false\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEALPLAN_PORT")
}

func TestLoadFileMissing(t *testing.T) {
	resetViper(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"valid", func(s *Settings) {}, ""},
		{"bad port", func(s *Settings) { s.WebServer.Port = "0" }, "webserver port"},
		{"unknown database", func(s *Settings) { s.Database.Type = "postgres" }, "unsupported database type"},
		{"non xlsx import path", func(s *Settings) { s.Import.Path = "plan.csv" }, "must name an .xlsx file"},
		{"unknown startup policy", func(s *Settings) { s.Import.Startup = "sometimes" }, "startup import policy"},
		{"template without placeholder", func(s *Settings) { s.Images.URLTemplate = "https://example.com/x.png" }, "placeholder"},
		{"template with two placeholders", func(s *Settings) { s.Images.URLTemplate = "https://example.com/%d/%d.png" }, "found 2"},
		{"template with string verb", func(s *Settings) { s.Images.URLTemplate = "https://example.com/%s/%d.png" }, "unsupported verb %s"},
		{"template with dangling percent", func(s *Settings) { s.Images.URLTemplate = "https://example.com/%d%" }, "dangling"},
		{"template with escaped percent", func(s *Settings) { s.Images.URLTemplate = "https://example.com/100%%/%d.png" }, ""},
		{"disabled images skip template", func(s *Settings) { s.Images = ImageSettings{URLTemplate: "%s"} }, ""},
		{"telemetry without dsn", func(s *Settings) { s.Telemetry.Enabled = true }, "dsn is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)

			err := ValidateSettings(s)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSettingsDefaultsStartupPolicy(t *testing.T) {
	s := validSettings()
	s.Import.Startup = ""

	require.NoError(t, ValidateSettings(s))
	assert.Equal(t, StartupImportAlways, s.Import.Startup)
}

func TestLoggerConfigDebugOverridesLevels(t *testing.T) {
	s := validSettings()
	s.Debug = true

	cfg := s.LoggerConfig()
	assert.Equal(t, "debug", cfg.DefaultLevel)
	assert.Equal(t, "debug", cfg.Console.Level)
	assert.Equal(t, "debug", cfg.FileOutput.Level)
}

func TestSaveYAMLConfigRoundTrip(t *testing.T) {
	resetViper(t)

	s := validSettings()
	s.WebServer.Port = "7070"
	s.Version = "should-not-be-written"
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, SaveYAMLConfig(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should-not-be-written")

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", loaded.WebServer.Port)
}

func TestDefaultConfigYAMLEmbedded(t *testing.T) {
	assert.Contains(t, DefaultConfigYAML(), "urltemplate")
	assert.NotEmpty(t, GetDefaultConfigPaths())
}

func validSettings() *Settings {
	return &Settings{
		WebServer: WebServerSettings{Port: "5000", ShutdownTimeout: time.Second},
		Database:  DatabaseSettings{Type: DatabaseSQLite, SQLite: SQLiteSettings{Path: "meals.db"}},
		Import:    ImportSettings{Path: "data/meal_plan.xlsx", Startup: StartupImportAlways},
		Images:    ImageSettings{Enabled: true, URLTemplate: "https://picsum.photos/seed/meal-%d/400/300"},
		Logging:   LoggingSettings{Level: "info"},
		Telemetry: TelemetrySettings{SampleRate: 1},
	}
}
