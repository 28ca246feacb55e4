package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mealplan/internal/buildinfo"
)

func TestRootCommandLoadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("webserver:\n  port: \"8123\"\n"), 0o600))

	var out bytes.Buffer
	rootCmd := RootCommand(buildinfo.NewContext("1.0.0", "2026-02-01"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", configPath, "config"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "8123")
}

func TestRootCommandRejectsMissingConfigFile(t *testing.T) {
	rootCmd := RootCommand(buildinfo.NewContext("", ""))
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "config"})

	assert.Error(t, rootCmd.Execute())
}

func TestRootCommandVersion(t *testing.T) {
	var out bytes.Buffer
	rootCmd := RootCommand(buildinfo.NewContext("2.1.0", "2026-02-01"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "2.1.0 (built 2026-02-01)")
}
