package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/fire-inspection-etl/internal/config"
	"github.com/lmittmann/tint"
)

// NewLogger creates the service logger from LOG_LEVEL and LOG_FORMAT and sets
// it as the slog default. "text" selects a colourised console handler; any
// other format logs JSON.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(newHandler(os.Stdout, cfg.LogLevel, cfg.LogFormat))
	slog.SetDefault(logger)
	return logger
}

// NewConsoleLogger writes text logs to w without replacing the slog default.
func NewConsoleLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(newHandler(w, level, "text"))
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	lvl := parseLevel(level)
	if strings.EqualFold(format, "text") {
		return tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
}

// parseLevel accepts debug, info, warn/warning and error. Anything else is info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
