package scheduler

import (
	"fmt"
	"io"
	"log"
	"log/slog"
)

// ParseLogLevel maps a log_level setting (debug, info, warn, error) to an
// slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	return l, nil
}

// NewLogger returns a *log.Logger whose lines go through an slog handler
// chosen by LogFormat and filtered by LogLevel. Printf output is recorded at
// info level, so warn and error silence it.
func (c *Config) NewLogger(w io.Writer, prefix string) (*log.Logger, error) {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch c.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	logger := slog.NewLogLogger(handler, slog.LevelInfo)
	logger.SetPrefix(prefix)
	return logger, nil
}

// debugEnabled reports whether per-refresh detail should be logged
func (c *Config) debugEnabled() bool {
	level, err := ParseLogLevel(c.LogLevel)
	return err == nil && level <= slog.LevelDebug
}
