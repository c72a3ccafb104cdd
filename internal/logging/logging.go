package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Setup installs the process-wide slog logger. format is "json" or "text";
// an unknown level falls back to info.
func Setup(level, format string) {
	slog.SetDefault(slog.New(newHandler(os.Stdout, level, format)))
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if format == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func Fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
