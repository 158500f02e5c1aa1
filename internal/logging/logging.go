package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"genlens/internal/config"
)

// New creates a logger according to cfg, writing to w. The human format is
// the default; "json" switches to slog's JSON handler.
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	return NewWithLevel(cfg.Format, LevelFromString(cfg.Level), w)
}

// NewWithLevel is New with an explicit level, for callers that derive the
// level from CLI flags rather than config.
func NewWithLevel(format string, level slog.Level, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(NewHumanHandler(w, opts))
}

// NewFileLogger creates a logger that appends to a size-rotated file at path.
// The caller owns the returned closer.
func NewFileLogger(path, format string, level slog.Level) (*slog.Logger, io.Closer, error) {
	rf, err := OpenRotatingFile(path, defaultMaxLogSize, defaultMaxBackups)
	if err != nil {
		return nil, nil, err
	}
	return NewWithLevel(format, level, rf), rf, nil
}

// NewDiscardLogger creates a logger that drops everything. Useful for tests
// and for callers that pass no logger.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// LevelFromString converts a string to a slog.Level. Supports debug, info,
// warn, error (case-insensitive); anything else means info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromVerbosity converts CLI verbosity flags to a slog.Level.
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	if quiet {
		return slog.Level(100)
	}
	switch verbosity {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
