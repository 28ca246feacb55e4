// env.go - Environment variable configuration and validation for the meal plan server
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "MEALPLAN_DEBUG", validateEnvBool},

		// Web server
		{"webserver.host", "MEALPLAN_HOST", nil},
		{"webserver.port", "MEALPLAN_PORT", validateEnvPort},
		{"webserver.debugroutes", "MEALPLAN_DEBUG_ROUTES", validateEnvBool},
		{"webserver.uploadlimit", "MEALPLAN_UPLOAD_LIMIT", nil},
		{"webserver.shutdowntimeout", "MEALPLAN_SHUTDOWN_TIMEOUT", validateEnvDuration},
		{"webserver.cachettl", "MEALPLAN_CACHE_TTL", validateEnvDuration},

		// Database
		{"database.type", "MEALPLAN_DATABASE_TYPE", validateEnvDatabaseType},
		{"database.sqlite.path", "MEALPLAN_SQLITE_PATH", nil},
		{"database.mysql.host", "MEALPLAN_MYSQL_HOST", nil},
		{"database.mysql.port", "MEALPLAN_MYSQL_PORT", validateEnvPort},
		{"database.mysql.username", "MEALPLAN_MYSQL_USERNAME", nil},
		{"database.mysql.password", "MEALPLAN_MYSQL_PASSWORD", nil},
		{"database.mysql.database", "MEALPLAN_MYSQL_DATABASE", nil},

		// Importer
		{"import.path", "MEALPLAN_IMPORT_PATH", nil},
		{"import.startup", "MEALPLAN_IMPORT_STARTUP", validateEnvStartupPolicy},

		// Images
		{"images.enabled", "MEALPLAN_IMAGES_ENABLED", validateEnvBool},
		{"images.urltemplate", "MEALPLAN_IMAGE_URL_TEMPLATE", nil},

		// Logging
		{"logging.level", "MEALPLAN_LOG_LEVEL", validateEnvLogLevel},
		{"logging.file.path", "MEALPLAN_LOG_FILE", nil},

		// Telemetry and metrics
		{"telemetry.enabled", "MEALPLAN_TELEMETRY_ENABLED", validateEnvBool},
		{"telemetry.dsn", "MEALPLAN_SENTRY_DSN", nil},
		{"metrics.enabled", "MEALPLAN_METRICS_ENABLED", validateEnvBool},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvDuration(value string) error {
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	return nil
}

func validateEnvDatabaseType(value string) error {
	switch strings.ToLower(value) {
	case DatabaseSQLite, DatabaseMySQL:
		return nil
	}
	return fmt.Errorf("database type must be %q or %q", DatabaseSQLite, DatabaseMySQL)
}

func validateEnvStartupPolicy(value string) error {
	switch strings.ToLower(value) {
	case StartupImportAlways, StartupImportIfEmpty, StartupImportNever:
		return nil
	}
	return fmt.Errorf("startup policy must be one of %s, %s, %s",
		StartupImportAlways, StartupImportIfEmpty, StartupImportNever)
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %q", value)
}
