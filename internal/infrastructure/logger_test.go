package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelbreak/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "fuelbreak.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLoggerOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, GetLogger())
}

func TestCreateLoggerFileError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := createLogger(config.LoggingConfig{
		Output:   "file",
		FilePath: filepath.Join(blocker, "app.log"),
	}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger, err := createLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "with run")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "run-123", entry["run_id"])
	_, hasTrace := entry["trace_id"]
	assert.False(t, hasTrace)
}

func TestRunIDInjectionKeptAcrossWith(t *testing.T) {
	var buf bytes.Buffer
	logger, err := createLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	ctx := WithRunID(context.Background(), "run-456")
	WithComponent(logger, "loader").InfoContext(ctx, "loaded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "run-456", entry["run_id"])
	assert.Equal(t, "loader", entry["component"])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := createLogger(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	require.NoError(t, err)

	logger.Info("plain", "rows", 3)
	assert.Contains(t, buf.String(), "msg=plain")
	assert.Contains(t, buf.String(), "rows=3")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestGetRunID(t *testing.T) {
	assert.Empty(t, GetRunID(context.Background()))
	//nolint:staticcheck
	assert.Empty(t, GetRunID(nil))

	ctx := EnsureRunID(context.Background())
	id := GetRunID(ctx)
	assert.Len(t, id, 36)

	// EnsureRunID keeps an existing id
	assert.Equal(t, id, GetRunID(EnsureRunID(ctx)))
}

func TestGenerateRunIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateRunID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
