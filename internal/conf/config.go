// config.go: settings struct for the meal plan server and functions to load and save it.
package conf

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/mealplan/internal/logger"
)

//go:embed config.yaml
var defaultConfig string

// Startup import policies
const (
	StartupImportAlways  = "always"  // reload the spreadsheet on every start
	StartupImportIfEmpty = "ifempty" // reload only when the meals table is empty
	StartupImportNever   = "never"   // never import at startup
)

// Database backends
const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"
)

// WebServerSettings contains settings for the HTTP server.
type WebServerSettings struct {
	Host            string        // listen host, empty for all interfaces
	Port            string        // listen port
	DebugRoutes     bool          // register /debug endpoints
	UploadLimit     string        // max request body size, e.g. "10M"
	ShutdownTimeout time.Duration // graceful shutdown deadline
	CacheTTL        time.Duration // meal query cache lifetime, 0 uses the default
}

// Address returns the host:port listen address
func (w *WebServerSettings) Address() string {
	return w.Host + ":" + w.Port
}

// SQLiteSettings contains settings for the SQLite backend.
type SQLiteSettings struct {
	Path string // path to the database file
}

// MySQLSettings contains settings for the MySQL backend.
type MySQLSettings struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// DatabaseSettings selects and configures the relational store.
type DatabaseSettings struct {
	Type   string // "sqlite" or "mysql"
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// ImportSettings controls the spreadsheet importer.
type ImportSettings struct {
	Path    string // well-known spreadsheet path, startup source and upload target
	Startup string // startup policy: always, ifempty, never
}

// ImageSettings controls the derived display image of a meal.
type ImageSettings struct {
	Enabled     bool
	URLTemplate string // fmt template, %d is replaced by the meal id
}

// LogFileSettings contains settings for the JSON log file.
type LogFileSettings struct {
	Enabled bool
	Path    string
	Level   string
}

// LoggingSettings contains settings for console and file logging.
type LoggingSettings struct {
	Level    string // default level for all modules
	Timezone string
	Console  bool
	File     LogFileSettings
}

// TelemetrySettings contains settings for Sentry error reporting.
type TelemetrySettings struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

// MetricsSettings contains settings for the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool
}

// Settings contains all configuration options for the meal plan server.
type Settings struct {
	Debug bool // true to enable debug logging

	Version   string `yaml:"-"` // runtime value, set at build time
	BuildDate string `yaml:"-"` // runtime value, set at build time

	WebServer WebServerSettings
	Database  DatabaseSettings
	Import    ImportSettings
	Images    ImageSettings
	Logging   LoggingSettings
	Telemetry TelemetrySettings
	Metrics   MetricsSettings
}

// LoggerConfig converts logging settings into the logger package configuration
func (s *Settings) LoggerConfig() *logger.LoggingConfig {
	level := s.Logging.Level
	if s.Debug {
		level = string(logger.LogLevelDebug)
	}
	fileLevel := s.Logging.File.Level
	if fileLevel == "" || s.Debug {
		fileLevel = level
	}

	return &logger.LoggingConfig{
		DefaultLevel: level,
		Timezone:     s.Logging.Timezone,
		Console: &logger.ConsoleOutput{
			Enabled: s.Logging.Console,
			Level:   level,
		},
		FileOutput: &logger.FileOutput{
			Enabled: s.Logging.File.Enabled,
			Path:    s.Logging.File.Path,
			Level:   fileLevel,
		},
	}
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configuration from the default config paths, environment and defaults.
func Load() (*Settings, error) {
	return LoadFile("")
}

// LoadFile reads configuration from configFile, or from the default config
// paths when configFile is empty. A missing config file is not an error;
// defaults and environment variables apply.
func LoadFile(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper(configFile string) error {
	viper.SetConfigType("yaml")

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		for _, path := range GetDefaultConfigPaths() {
			viper.AddConfigPath(path)
		}
	}

	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// no config file, defaults apply
		case configFile != "" && errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("config file %s not found: %w", configFile, err)
		default:
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml, in order.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "mealplan"))
	}
	return append(paths, "/etc/mealplan")
}

// DefaultConfigYAML returns the embedded default configuration file.
func DefaultConfigYAML() string {
	return defaultConfig
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath atomically via a temp file and rename.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}
