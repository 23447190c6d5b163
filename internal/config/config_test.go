package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Window.CutoffHour != 9 || cfg.Window.CutoffMinute != 30 {
		t.Fatalf("cutoff = %02d:%02d", cfg.Window.CutoffHour, cfg.Window.CutoffMinute)
	}
	if cfg.Window.Location().String() != "America/New_York" {
		t.Fatalf("timezone = %s", cfg.Window.Location())
	}
	if cfg.Scan.Source != "atom" {
		t.Fatalf("source = %s", cfg.Scan.Source)
	}
	if cfg.Scan.CountPerPage != 100 {
		t.Fatalf("count per page = %d", cfg.Scan.CountPerPage)
	}
	if len(cfg.Scan.TrackedForms) == 0 {
		t.Fatal("tracked forms empty")
	}
	if cfg.Scoring.FormWeights["8-K"] != 10 {
		t.Fatalf("8-K weight = %d", cfg.Scoring.FormWeights["8-K"])
	}
	if len(cfg.Runner.BackoffSeconds) != 6 || cfg.Runner.BackoffSeconds[0] != 0 {
		t.Fatalf("backoffs = %v", cfg.Runner.BackoffSeconds)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
window:
  cutoffHour: 16
  weekendTail: true
scan:
  source: html
  countPerPage: 400
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Window.CutoffHour != 16 {
		t.Fatalf("cutoff hour = %d, want 16", cfg.Window.CutoffHour)
	}
	if !cfg.Window.WeekendTail {
		t.Fatal("weekend tail not enabled")
	}
	if cfg.Scan.Source != "html" {
		t.Fatalf("source = %s", cfg.Scan.Source)
	}
	// The feed endpoint caps count at 100; oversized values clamp.
	if cfg.Scan.CountPerPage != 100 {
		t.Fatalf("count per page = %d, want clamped 100", cfg.Scan.CountPerPage)
	}
	// Untouched keys keep their defaults.
	if cfg.Window.CutoffMinute != 30 {
		t.Fatalf("cutoff minute = %d, want default 30", cfg.Window.CutoffMinute)
	}
	if cfg.Scoring.FormWeights["8-K"] != 10 {
		t.Fatal("defaults lost under partial yaml")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(userAgentEnv, "Research research@example.com")
	t.Setenv(webhookURLEnv, "https://hooks.example.com/upload")
	t.Setenv(webhookSecretEnv, "hunter2")
	t.Setenv(ciEnv, "true")

	cfg := Load()

	if cfg.HTTP.UserAgent != "Research research@example.com" {
		t.Fatalf("user agent = %s", cfg.HTTP.UserAgent)
	}
	if cfg.Webhook.URL != "https://hooks.example.com/upload" || cfg.Webhook.Secret != "hunter2" {
		t.Fatalf("webhook = %+v", cfg.Webhook)
	}
	if !cfg.Runner.CIMode {
		t.Fatal("ci mode not set")
	}
}

func TestLoadBadTimezoneFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("window:\n  timezone: Mars/Olympus\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Window.Location().String() != "America/New_York" {
		t.Fatalf("timezone = %s, want fallback", cfg.Window.Location())
	}
}
