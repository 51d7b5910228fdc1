// Package logging installs the process-wide slog handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LevelCritical sits above slog.LevelError for callers that still use the
// CRITICAL/FATAL names.
const LevelCritical = slog.LevelError + 4

var (
	once  sync.Once
	level slog.LevelVar
)

// Config controls the handler installed by Setup.
type Config struct {
	Level  string // DEBUG, INFO, WARN/WARNING, ERROR, CRITICAL; default INFO
	Format string // "json" or "text"; default "text"
	Output io.Writer
}

// Setup installs the default slog handler the first time it is called.
// Later calls only change the level, so repeated programmatic runs never
// stack handlers.
func Setup(cfg Config) {
	level.Set(ParseLevel(cfg.Level))

	once.Do(func() {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		opts := &slog.HandlerOptions{Level: &level}

		var handler slog.Handler
		if strings.EqualFold(cfg.Format, "json") {
			handler = slog.NewJSONHandler(out, opts)
		} else {
			handler = slog.NewTextHandler(out, opts)
		}
		slog.SetDefault(slog.New(handler))
	})
}

// ParseLevel maps a level name to a slog.Level, case-insensitively.
// Unknown names fall back to INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	case "CRITICAL", "FATAL":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

// Level reports the currently configured level.
func Level() slog.Level {
	return level.Level()
}
