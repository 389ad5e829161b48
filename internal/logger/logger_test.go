package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-news-reader/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestZapAdapterWritesStructuredField(t *testing.T) {
	var buf bytes.Buffer
	sugar, err := InitWriter(&config.Config{LogLevel: "info"}, &buf)
	if err != nil {
		t.Fatalf("InitWriter: %v", err)
	}
	t.Cleanup(func() { S = nil })

	log := New(sugar)
	log.DebugObj("hidden", "k", 1)
	log.ErrorObj("search failed", "search_error", map[string]any{"kind": "network"})
	_ = sugar.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line above debug level, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "search failed" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
	field, ok := entry["search_error"].(map[string]any)
	if !ok || field["kind"] != "network" {
		t.Fatalf("unexpected field %#v", entry["search_error"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key in %v", entry)
	}
}

func TestNewNilReturnsNop(t *testing.T) {
	if _, ok := New(nil).(NopLogger); !ok {
		t.Fatalf("expected NopLogger for nil sugar")
	}
	if _, ok := Ensure(nil).(NopLogger); !ok {
		t.Fatalf("expected NopLogger from Ensure(nil)")
	}
}

func TestPackageErrorObj(t *testing.T) {
	S = nil
	ErrorObj("dropped", "error", "before init")

	var buf bytes.Buffer
	if _, err := InitWriter(&config.Config{LogLevel: "error"}, &buf); err != nil {
		t.Fatalf("InitWriter: %v", err)
	}
	t.Cleanup(func() { S = nil })

	ErrorObj("newsreader exited with error", "error", "boom")
	_ = Close()

	out := strings.TrimSpace(buf.String())
	if strings.Count(out, "\n") != 0 || !strings.Contains(out, `"error":"boom"`) {
		t.Fatalf("unexpected output %q", out)
	}
}
