package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriterFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(NewWithWriter(&buf, "warn"), "sync")

	logger.Info("dropped")
	logger.Warn("kept", "user_id", "u1")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("expected a single json record, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "kept" || record["component"] != "sync" || record["user_id"] != "u1" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestNewWithWriterDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "loud")
	logger.Debug("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected debug dropped at default level, got %q", buf.String())
	}
	logger.Info("kept")
	if buf.Len() == 0 {
		t.Fatalf("expected info record")
	}
}
