package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("not a JSON record: %q (%v)", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "JSON", "warn")

	logger.Info("dropped")
	logger.Warn("audit forward failed", "target", "redis", "entity_id", "42")

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1: %v", len(records), records)
	}
	rec := records[0]
	if rec["msg"] != "audit forward failed" || rec["level"] != "WARN" {
		t.Errorf("record = %v", rec)
	}
	if rec["target"] != "redis" || rec["entity_id"] != "42" {
		t.Errorf("attributes missing: %v", rec)
	}
	if _, ok := rec["source"]; ok {
		t.Error("source attached below debug level")
	}
}

func TestNewLogger_DebugIncludesSource(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "json", "debug").Debug("snapshot built")

	records := decodeLines(t, &buf)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if _, ok := records[0]["source"]; !ok {
		t.Errorf("source missing at debug level: %v", records[0])
	}
}

func TestNewLogger_TextFallback(t *testing.T) {
	for _, format := range []string{"text", "", "logfmt"} {
		var buf bytes.Buffer
		NewLogger(&buf, format, "info").Info("bucket deleted", "bucket_id", 3)

		out := buf.String()
		if !strings.Contains(out, `msg="bucket deleted"`) || !strings.Contains(out, "bucket_id=3") {
			t.Errorf("format %q: output = %q", format, out)
		}
	}
}

func TestSetupLogger_ReplacesDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	SetupLogger("json", "error")
	if slog.Default() == prev {
		t.Fatal("default logger not replaced")
	}
	if slog.Default().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn enabled with level error")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"trace":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
