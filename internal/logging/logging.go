package logging

import (
	"fmt"
	"io"
	"strings"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
)

// ParseLevel maps a config level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a human-readable logger writing to w.
func New(w io.Writer, level string) (slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return slog.Logger{}, err
	}
	return slog.Make(sloghuman.Sink(w)).Leveled(lvl).Named("rwho"), nil
}
