package config

import (
	"time"

	"golang-divergence-signals/pkg/config"
)

// Query holds the default filters applied when the caller does not override
// them on the command line.
type Query struct {
	MinConfidence  float64  `mapstructure:"min_confidence"`
	UseNextDayOpen bool     `mapstructure:"use_next_day_open"`
	StockCodes     []string `mapstructure:"stock_codes"`
}

// Daily holds configuration for the scheduled daily signal push.
type Daily struct {
	Schedule       string        `mapstructure:"schedule"`
	PushEnabled    bool          `mapstructure:"push_enabled"`
	PushMarkerTTL  time.Duration `mapstructure:"push_marker_ttl"`
	ResultCacheTTL time.Duration `mapstructure:"result_cache_ttl"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken             string `mapstructure:"bot_token"`
	ChatID               int64  `mapstructure:"chat_id"`
	MaxMessagesPerMinute int    `mapstructure:"max_messages_per_minute"`
}

// Config holds the full configuration for the signal query service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	Query    Query           `mapstructure:"query"`
	Daily    Daily           `mapstructure:"daily"`
	Telegram Telegram        `mapstructure:"telegram"`
}

// Load loads the query service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Daily.Schedule == "" {
		cfg.Daily.Schedule = "0 18 * * 1-5"
	}
	if cfg.Daily.PushMarkerTTL == 0 {
		cfg.Daily.PushMarkerTTL = 48 * time.Hour
	}
	if cfg.Daily.ResultCacheTTL == 0 {
		cfg.Daily.ResultCacheTTL = 15 * time.Minute
	}
	return &cfg, nil
}
