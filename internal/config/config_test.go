package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppName != "samvad-event-sender" {
		t.Fatalf("AppName = %q", cfg.AppName)
	}
	if cfg.JournalType != "none" {
		t.Fatalf("journal should be disabled by default, got %q", cfg.JournalType)
	}
	if cfg.SendTimeout != 0 {
		t.Fatalf("expected no send timeout by default, got %s", cfg.SendTimeout)
	}
	if cfg.HTTPMethod != "POST" {
		t.Fatalf("HTTPMethod = %q", cfg.HTTPMethod)
	}
	if cfg.JournalRetention != 7*24*time.Hour {
		t.Fatalf("JournalRetention = %s", cfg.JournalRetention)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SINK_TYPE", " SQS ")
	t.Setenv("SEND_TIMEOUT_SECONDS", "30")
	t.Setenv("EVENT_HUB_NAME", "e2e-hub")
	t.Setenv("HTTP_METHOD", "put")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SinkType != "sqs" {
		t.Fatalf("SinkType = %q", cfg.SinkType)
	}
	if cfg.SendTimeout != 30*time.Second {
		t.Fatalf("SendTimeout = %s", cfg.SendTimeout)
	}
	if cfg.EventHubName != "e2e-hub" {
		t.Fatalf("EventHubName = %q", cfg.EventHubName)
	}
	if cfg.HTTPMethod != "PUT" {
		t.Fatalf("HTTPMethod = %q", cfg.HTTPMethod)
	}
}

func TestLoadRejectsInvalidDurations(t *testing.T) {
	cases := map[string]string{
		"SEND_TIMEOUT_SECONDS":      "-1",
		"HTTP_TIMEOUT_SECONDS":      "0",
		"JOURNAL_RETENTION_SECONDS": "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}
