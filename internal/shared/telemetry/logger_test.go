package telemetry

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	SetLevel("WARNING")
	defer SetLevel("INFO")

	Debug("d", nil)
	Info("i", nil)
	Warn("w", nil)
	Error("e", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines at WARNING level, got %d: %q", len(lines), buf.String())
	}
}

func TestErrorLineShape(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Error("boom", map[string]any{"code": "X"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["level"] != "error" || entry["msg"] != "boom" || entry["code"] != "X" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("missing ts")
	}
}
