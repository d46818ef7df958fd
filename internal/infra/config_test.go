package infra

import (
	"fmt"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sportscast")
	t.Setenv("VEO_API_KEY", "k1")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "8080" || cfg.AppEnv != "development" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.PollInterval != 8*time.Second || cfg.MaxPolls != 45 {
		t.Fatalf("poll defaults = %v/%d", cfg.PollInterval, cfg.MaxPolls)
	}
	if cfg.StaggerInterval != 6*time.Second || cfg.RetryAttempts != 3 {
		t.Fatalf("pacing defaults = %v/%d", cfg.StaggerInterval, cfg.RetryAttempts)
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestCollectVeoKeysGathersNumberedSlots(t *testing.T) {
	t.Setenv("VEO_API_KEY", "k1")
	t.Setenv("VEO_API_KEY2", "k2")
	t.Setenv("VEO_API_KEY3", "")
	t.Setenv("VEO_API_KEY4", "k4")

	keys := collectVeoKeys()
	want := []string{"k1", "k2", "k4"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
}

func TestCollectVeoKeysFallsBackToGemini(t *testing.T) {
	t.Setenv("VEO_API_KEY", "")
	for i := 2; i <= 9; i++ {
		t.Setenv(fmt.Sprintf("VEO_API_KEY%d", i), "")
	}
	t.Setenv("GEMINI_API_KEY", "shared")

	keys := collectVeoKeys()
	if len(keys) != 1 || keys[0] != "shared" {
		t.Fatalf("keys = %v, want [shared]", keys)
	}
}
