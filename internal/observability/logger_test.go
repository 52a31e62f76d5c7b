package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "info", "json"))

	logger.Debug("hidden")
	logger.Info("report parsed", "building", "Cardston Temple")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "report parsed", entry["msg"])
	assert.Equal(t, "Cardston Temple", entry["building"])
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "warn", "text"))

	logger.Info("hidden")
	logger.Warn("building not found", "building", "Waterton Chapel")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "building not found")
	assert.Contains(t, out, "Waterton Chapel")
}

func TestNewConsoleLogger_KeepsDefault(t *testing.T) {
	before := slog.Default()
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, "info")

	logger.Info("building updated", "building", "Cardston Temple")

	assert.Same(t, before, slog.Default())
	assert.Contains(t, buf.String(), "building updated")
}
