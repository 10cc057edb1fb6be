package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-event-sender/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLoggerWritesStructuredJSON(t *testing.T) {
	t.Cleanup(func() { S = nil })

	var buf bytes.Buffer
	log := initWithWriter(&config.Config{AppName: "sender", Env: "test", LogLevel: "info"}, &buf)

	log.DebugObj("hidden", "k", "v")
	log.InfoObj("event sent", "send_meta", map[string]any{"sink": "eventhub"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line (debug filtered), got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "event sent" || entry["app"] != "sender" {
		t.Fatalf("unexpected entry %#v", entry)
	}
	meta, ok := entry["send_meta"].(map[string]any)
	if !ok || meta["sink"] != "eventhub" {
		t.Fatalf("send_meta missing: %#v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("ts key missing: %#v", entry)
	}
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("noop", "k", 1)
	ErrorObj("noop", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close before Init: %v", err)
	}
}
