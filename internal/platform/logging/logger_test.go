package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestInitJSONRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger := Init("warn", "json", buf)
	logger.Info("hidden")
	logger.Warn("visible", "night_id", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}
	record := map[string]any{}
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["msg"] != "visible" || record["night_id"] != float64(7) {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestInitDefaultsToTextInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger := Init("bogus", "", buf)
	logger.Debug("hidden")
	logger.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "msg=shown") {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}
