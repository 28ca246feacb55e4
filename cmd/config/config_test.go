package config

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/mealplan/internal/conf"
)

func testSettings() *conf.Settings {
	return &conf.Settings{
		WebServer: conf.WebServerSettings{Port: "5000"},
		Database: conf.DatabaseSettings{
			Type:  conf.DatabaseMySQL,
			MySQL: conf.MySQLSettings{Host: "db", Username: "meals", Password: "hunter2", Database: "meals"},
		},
		Telemetry: conf.TelemetrySettings{Enabled: true, DSN: "https://key@example.com/1"},
	}
}

func TestConfigCommandRedactsSecrets(t *testing.T) {
	t.Parallel()
	settings := testSettings()

	var out bytes.Buffer
	cmd := Command(settings)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.NotContains(t, out.String(), "hunter2")
	assert.NotContains(t, out.String(), "key@example.com")

	var printed conf.Settings
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, redacted, printed.Database.MySQL.Password)
	assert.Equal(t, "db", printed.Database.MySQL.Host)

	assert.Equal(t, "hunter2", settings.Database.MySQL.Password, "redaction must not modify the live settings")
}

func TestConfigCommandDefaults(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := Command(testSettings())
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--defaults"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, conf.DefaultConfigYAML(), out.String())
}

func TestConfigCommandSave(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")

	var out bytes.Buffer
	cmd := Command(testSettings())
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--save", path})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), path)
	assert.FileExists(t, path)
}
