package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/lox/weatherdesk/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.Config{LogLevel: "warn", LogFormat: "json"})

	logger.Info("dropped")
	logger.Warn("backend not ready", "attempt", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1:\n%s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["app"] != "weatherdesk" || entry["msg"] != "backend not ready" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.Config{LogLevel: "debug", LogFormat: "text"})
	logger.Debug("history entry selected", "id", "b1")
	if !strings.Contains(buf.String(), "history entry selected") {
		t.Errorf("output = %q", buf.String())
	}
}
