package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synctower", "config.toml")

	require.NoError(t, WriteDefault(path), "WriteDefault failed")

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read written file")

	assert.Contains(t, string(content), "[sync]")
	assert.Contains(t, string(content), "[http.retry]")
	assert.Contains(t, string(content), "${BASEURL:-}")
}

func TestWriteDefault_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "config.toml")

	require.NoError(t, WriteDefault(path), "WriteDefault failed")

	_, err := os.Stat(path)
	assert.NoError(t, err, "file was not created")
}

func TestWriteDefault_KeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0644))

	err := WriteDefault(path)
	assert.True(t, errors.Is(err, os.ErrExist), "expected ErrExist, got %v", err)

	content, _ := os.ReadFile(path)
	assert.Equal(t, "# mine\n", string(content))
}

func TestConfig_WriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Sync.BaseURL = "http://catalog.local"
	cfg.Sync.Interval.Duration = 90 * time.Second
	cfg.Metrics.Addr = ":9090"

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.Write(path), "Write failed")

	content, _ := os.ReadFile(path)
	assert.Contains(t, string(content), "http://catalog.local")
	assert.Contains(t, string(content), `"1m30s"`)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Sync, loaded.Sync)
	assert.Equal(t, cfg.HTTP, loaded.HTTP)
	assert.Equal(t, cfg.Metrics, loaded.Metrics)
}
