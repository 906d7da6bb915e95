package config_test

import (
	"testing"
	"time"

	"montagebot/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("TIMEZONE", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseURL != "montagebot.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.LocationTimeout != 15*time.Second {
		t.Errorf("LocationTimeout = %v", cfg.LocationTimeout)
	}
	if cfg.CheckInterval != 30*time.Minute {
		t.Errorf("CheckInterval = %v", cfg.CheckInterval)
	}
	if cfg.RetryAttempts != 5 {
		t.Errorf("RetryAttempts = %d", cfg.RetryAttempts)
	}
	if err := cfg.RequireTelegram(); err == nil {
		t.Error("RequireTelegram() without token should fail")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("SCHEDULER_CHECK_INTERVAL", "5m")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		t.Errorf("RequireTelegram() = %v", err)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Berlin" {
		t.Errorf("Location() = %v, %v", loc, err)
	}

	settings := cfg.DefaultSettings()
	if err := settings.Validate(); err != nil {
		t.Fatalf("DefaultSettings().Validate() = %v", err)
	}
	if got := settings.CheckInterval(); got != 15*time.Minute {
		t.Errorf("CheckInterval() = %v, want 15m floor", got)
	}
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")
	if _, err := config.Load(); err == nil {
		t.Fatal("Load() with unknown timezone should fail")
	}
}
