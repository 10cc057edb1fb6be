package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunRejectsWrongArgumentCount(t *testing.T) {
	var stderr bytes.Buffer
	if code := run([]string{"only-one"}, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr.String(), "Usage: send-event <connection_string> <message_body>") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestRunReportsUnknownSinkType(t *testing.T) {
	t.Setenv("SINK_TYPE", "kafka")
	t.Setenv("LOG_LEVEL", "error")

	var stderr bytes.Buffer
	if code := run([]string{"broker:9092", "hello"}, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), `No publisher available for sink type "kafka"`) {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestRunReportsMalformedConnectionString(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	var stderr bytes.Buffer
	if code := run([]string{"not-a-connection-string", "hello"}, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr.String(), "send-event: ") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}
