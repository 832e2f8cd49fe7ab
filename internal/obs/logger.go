// Package obs sets up logging and tracing for the API process.
package obs

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger returns a colourised tint logger for dev/local environments and a
// JSON logger otherwise, both filtered at level.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	lvl := ParseLevel(level)
	if IsDev(env) {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// IsDev reports whether env names a developer machine.
func IsDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "local":
		return true
	}
	return false
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
