package logger

import (
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init configures the process logger. An empty level or format falls back to
// env-based defaults: JSON at info in production, text at debug elsewhere.
func Init(env string, opts ...string) {
	level := ""
	format := ""
	if len(opts) > 0 {
		level = opts[0]
	}
	if len(opts) > 1 {
		format = opts[1]
	}

	if format == "" {
		format = "text"
		if env == "production" {
			format = "json"
		}
	}
	if level == "" {
		level = "debug"
		if env == "production" {
			level = "info"
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func L() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}
