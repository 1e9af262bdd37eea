package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "gleamweb.db", cfg.Server.StorePath)
	assert.Equal(t, "gleam_web_server", cfg.Service.Name)
	assert.Equal(t, "Gleam", cfg.Service.DisplayName)
}

func TestConfigReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"server": {"host": "127.0.0.1", "port": 9000, "store_path": "test.db"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.ReadFile(path))

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "test.db", cfg.Server.StorePath)
	// Untouched sections keep their defaults.
	assert.Equal(t, "gleam_web_server", cfg.Service.Name)
}

func TestConfigReadFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, os.IsNotExist(err))
}
