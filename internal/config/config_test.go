package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warning", cfg.LogLevel)
	assert.Empty(t, cfg.StdlibRoot)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "micals.toml")
	require.NoError(t, os.WriteFile(path, []byte("stdlib_root = \"/opt/mica/std\"\nlog_level = \"debug\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/mica/std", cfg.StdlibRoot)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "micals.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"debug\"\n"), 0o644))

	t.Setenv("MICALS_LOG_LEVEL", "trace")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.LogLevel)
}
