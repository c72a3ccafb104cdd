package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "info", "json"))

	logger.Debug("hidden")
	logger.Info("scene rebuilt", "live", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["msg"] != "scene rebuilt" || entry["live"] != float64(3) {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewHandler_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "warn", "text"))

	logger.Info("hidden")
	logger.Warn("dispose of unknown sphere", "handle", "h1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `msg="dispose of unknown sphere"`) || !strings.Contains(out, "handle=h1") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestNewHandler_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "debug", "json"))

	logger.Debug("batch fetched")
	if !strings.Contains(buf.String(), "batch fetched") {
		t.Error("expected debug output at debug level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
