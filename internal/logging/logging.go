// Package logging installs the process-wide slog handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Environment overrides, applied over config values.
const (
	EnvLevel  = "QUIP_LOG_LEVEL"
	EnvFormat = "QUIP_LOG_FORMAT"
)

// Configure builds a logger writing to stderr, sets it as the slog default and
// returns it. QUIP_LOG_LEVEL and QUIP_LOG_FORMAT win over the arguments.
func Configure(level, format string) *slog.Logger {
	if v := os.Getenv(EnvLevel); v != "" {
		level = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		format = v
	}
	logger := New(os.Stderr, level, format)
	slog.SetDefault(logger)
	return logger
}

// New returns a logger writing to w. format "json" selects the JSON handler;
// anything else is text. Timestamps are RFC3339 in UTC.
func New(w io.Writer, level, format string) *slog.Logger {
	options := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				if ts, ok := attr.Value.Any().(time.Time); ok {
					attr.Value = slog.StringValue(ts.UTC().Format(time.RFC3339))
				}
			}
			return attr
		},
	}

	var handler slog.Handler
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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
