package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"montagebot/internal/model"
)

// Config keeps runtime settings for the bot and the CLI.
type Config struct {
	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"montagebot.db"`

	// Redis is optional; an empty address keeps the delivery log in sqlite.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"montagebot"`

	LoggerLevel  string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text

	MetricsAddr string `env:"METRICS_ADDR"`

	Timezone        string        `env:"TIMEZONE"`
	LocationTimeout time.Duration `env:"LOCATION_TIMEOUT" envDefault:"15s"`

	CheckInterval       time.Duration `env:"SCHEDULER_CHECK_INTERVAL" envDefault:"30m"`
	RetryAttempts       uint          `env:"SCHEDULER_RETRY_ATTEMPTS" envDefault:"5"`
	RetryInitial        time.Duration `env:"SCHEDULER_RETRY_INITIAL" envDefault:"1s"`
	ClockWatchInterval  time.Duration `env:"CLOCK_WATCH_INTERVAL" envDefault:"1m"`
	ClockDriftTolerance time.Duration `env:"CLOCK_DRIFT_TOLERANCE" envDefault:"2m"`
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.LocationTimeout <= 0 {
		return cfg, fmt.Errorf("LOCATION_TIMEOUT must be positive")
	}
	if cfg.ClockWatchInterval <= 0 {
		return cfg, fmt.Errorf("CLOCK_WATCH_INTERVAL must be positive")
	}
	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// RequireTelegram checks the settings needed by the serve command.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	return nil
}

// Location resolves TIMEZONE, falling back to the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultSettings seeds ReminderSettings on first start.
func (c Config) DefaultSettings() model.ReminderSettings {
	return model.ReminderSettings{
		ID:                   model.SettingsID,
		Morning:              model.Window{Enabled: true, Start: model.MustTimeOfDay(6, 0), End: model.MustTimeOfDay(13, 0)},
		Evening:              model.Window{Enabled: true, Start: model.MustTimeOfDay(16, 0), End: model.MustTimeOfDay(22, 30)},
		CenterLat:            51.340,
		CenterLon:            12.374,
		RadiusMeters:         30000,
		MinAccuracyMeters:    3000,
		ReferenceLabel:       "Leipzig",
		CheckIntervalMinutes: int(c.CheckInterval / time.Minute),
	}
}
