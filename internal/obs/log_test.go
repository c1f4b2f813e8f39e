package obs

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLogEventEmitsJSON(t *testing.T) {
	logger := Logger()
	original := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	Warn("stored blob unreadable, serving default", map[string]any{"key": "th:session"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v (%s)", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
	if entry["msg"] != "stored blob unreadable, serving default" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["key"] != "th:session" {
		t.Fatalf("unexpected field: %v", entry["key"])
	}
	if entry["ts"] == nil {
		t.Fatal("missing timestamp")
	}
}
