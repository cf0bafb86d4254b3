package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gesture.Threshold != 100 {
		t.Errorf("threshold = %v", cfg.Gesture.Threshold)
	}
	if cfg.Session.Debounce.Std() != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Session.Debounce.Std())
	}
}

func TestFileThenEnvLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  port: "9001"
gesture:
  threshold: 150
  settle_after: 250ms
session:
  compression: gzip
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MARINA_GESTURE_THRESHOLD", "200")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9001" {
		t.Errorf("port = %q, want file value", cfg.Server.Port)
	}
	if cfg.Gesture.Threshold != 200 {
		t.Errorf("threshold = %v, want env override", cfg.Gesture.Threshold)
	}
	if cfg.Gesture.SettleAfter.Std() != 250*time.Millisecond {
		t.Errorf("settle_after = %v, want file value", cfg.Gesture.SettleAfter.Std())
	}
	if cfg.Session.Compression != "gzip" {
		t.Errorf("compression = %q, want file value", cfg.Session.Compression)
	}
	// Fields neither the file nor the environment touch keep defaults.
	if cfg.Gesture.EventsPerSecond != 60 {
		t.Errorf("events_per_second = %d, want default", cfg.Gesture.EventsPerSecond)
	}
}

func TestEnvDurationParsing(t *testing.T) {
	t.Setenv("MARINA_SESSION_DEBOUNCE", "1.5s")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.Debounce.Std() != 1500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Session.Debounce.Std())
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = "nope" }},
		{"zero threshold", func(c *Config) { c.Gesture.Threshold = 0 }},
		{"bad compression", func(c *Config) { c.Session.Compression = "lz4" }},
		{"bad dock policy", func(c *Config) { c.Org.DockDeletePolicy = "archive" }},
		{"zero call timeout", func(c *Config) { c.Bridge.CallTimeout = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("validation passed, want error")
			}
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("load of missing file succeeded")
	}
}
