package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"wizardgo/internal/shared/config"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "warn", JSONFormat: true}, &buf)

	log.Info("dropped")
	log.Warn("kept", "component", "item_sweeper")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["msg"] != "kept" || entry["component"] != "item_sweeper" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("ERROR") != slog.LevelError {
		t.Fatalf("expected case-insensitive level parsing")
	}
	if parseLogLevel("verbose") != slog.LevelDebug {
		t.Fatalf("expected unknown levels to default to debug")
	}
}
