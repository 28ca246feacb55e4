// validate.go: settings validation
package conf

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct. String enums are
// normalized to lower case in place.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateDatabaseSettings(&settings.Database); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateImportSettings(&settings.Import); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateImageSettings(&settings.Images); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateTelemetrySettings(&settings.Telemetry); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateWebServerSettings(settings *WebServerSettings) error {
	var errs []string

	if port, err := strconv.Atoi(settings.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("webserver port %q must be a number between 1 and 65535", settings.Port))
	}
	if settings.ShutdownTimeout < 0 {
		errs = append(errs, "webserver shutdown timeout must not be negative")
	}
	if settings.CacheTTL < 0 {
		errs = append(errs, "webserver cache ttl must not be negative")
	}
	if settings.ShutdownTimeout == 0 {
		settings.ShutdownTimeout = 10 * time.Second
	}

	if len(errs) > 0 {
		return fmt.Errorf("webserver settings errors: %v", errs)
	}
	return nil
}

func validateDatabaseSettings(settings *DatabaseSettings) error {
	settings.Type = strings.ToLower(strings.TrimSpace(settings.Type))

	switch settings.Type {
	case DatabaseSQLite:
		if settings.SQLite.Path == "" {
			return fmt.Errorf("database settings errors: sqlite path is required")
		}
	case DatabaseMySQL:
		if settings.MySQL.Host == "" || settings.MySQL.Database == "" {
			return fmt.Errorf("database settings errors: mysql host and database are required")
		}
	default:
		return fmt.Errorf("database settings errors: unsupported database type %q", settings.Type)
	}
	return nil
}

func validateImportSettings(settings *ImportSettings) error {
	var errs []string

	if settings.Path == "" {
		errs = append(errs, "import path is required")
	} else if !strings.EqualFold(filepath.Ext(settings.Path), ".xlsx") {
		errs = append(errs, fmt.Sprintf("import path %q must name an .xlsx file", settings.Path))
	}

	settings.Startup = strings.ToLower(strings.TrimSpace(settings.Startup))
	switch settings.Startup {
	case "":
		settings.Startup = StartupImportAlways
	case StartupImportAlways, StartupImportIfEmpty, StartupImportNever:
	default:
		errs = append(errs, fmt.Sprintf("unknown startup import policy %q", settings.Startup))
	}

	if len(errs) > 0 {
		return fmt.Errorf("import settings errors: %v", errs)
	}
	return nil
}

func validateImageSettings(settings *ImageSettings) error {
	if !settings.Enabled {
		return nil
	}
	if err := validateURLTemplate(settings.URLTemplate); err != nil {
		return fmt.Errorf("image settings errors: %w", err)
	}
	return nil
}

// validateURLTemplate accepts templates with exactly one %d verb. %% is a
// literal percent sign; any other verb would render as a formatting error.
func validateURLTemplate(tpl string) error {
	placeholders := 0
	for i := 0; i < len(tpl); i++ {
		if tpl[i] != '%' {
			continue
		}
		if i+1 == len(tpl) {
			return fmt.Errorf("url template ends with a dangling %%")
		}
		i++
		switch tpl[i] {
		case '%':
		case 'd':
			placeholders++
		default:
			return fmt.Errorf("url template contains unsupported verb %%%c, only %%d is allowed", tpl[i])
		}
	}
	if placeholders != 1 {
		return fmt.Errorf("url template must contain exactly one %%d placeholder, found %d", placeholders)
	}
	return nil
}

func validateTelemetrySettings(settings *TelemetrySettings) error {
	if settings.Enabled && settings.DSN == "" {
		return fmt.Errorf("telemetry settings errors: dsn is required when telemetry is enabled")
	}
	if settings.SampleRate < 0 || settings.SampleRate > 1 {
		return fmt.Errorf("telemetry settings errors: sample rate must be between 0 and 1, got %g", settings.SampleRate)
	}
	return nil
}
