package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/dashboard-backend/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	logger := New(config.LogConfig{Level: "debug", File: path})
	require.True(t, logger.Rotating)

	logger.Debug("list reindexed", "list_id", 7)
	logger.Std(slog.LevelInfo).Printf("request %s", "GET /health")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "list reindexed")
	assert.Contains(t, string(data), "list_id=7")
	assert.Contains(t, string(data), "GET /health")
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	logger := New(config.LogConfig{Level: "warn", File: path})
	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}
