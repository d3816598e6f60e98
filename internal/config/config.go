// Package config содержит логику чтения конфигурации эскроу-бота.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Режимы доставки обновлений.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config содержит параметры конфигурации эскроу-бота.
// FeePercent читается для совместимости с продакшен-окружением,
// но в логике переходов не используется.
type Config struct {
	BotToken       string  `env:"BOT_TOKEN"`
	OperatorID     int64   `env:"ADMIN_ID"`
	WalletAddress  string  `env:"BOT_WALLET_ADDRESS"`
	FeePercent     float64 `env:"FEE_PERCENT"`
	DatabaseURI    string  `env:"DATABASE_URI"`
	RedisAddress   string  `env:"REDIS_ADDRESS"`
	Mode           string  `env:"BOT_MODE"`
	RunAddress     string  `env:"RUN_ADDRESS"`
	WebhookSecret  string  `env:"WEBHOOK_SECRET"`
	TelegramAPIURL string  `env:"TELEGRAM_API_URL"`
}

// Parse считывает конфигурацию из .env, переменных окружения и флагов командной строки.
func Parse() (*Config, error) {
	// Локальный .env необязателен.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envDatabaseURI := cfg.DatabaseURI
	envMode := cfg.Mode
	envRunAddress := cfg.RunAddress

	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.Mode, "m", ModePolling, "update delivery mode: polling or webhook")
	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for webhook HTTP server")

	flag.Parse()

	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envMode != "" {
		cfg.Mode = envMode
	}
	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}

	if cfg.BotToken == "" {
		return nil, errors.New("BOT_TOKEN must be set")
	}
	if cfg.DatabaseURI == "" {
		return nil, errors.New("database URI must be set")
	}
	if cfg.Mode != ModePolling && cfg.Mode != ModeWebhook {
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	if cfg.FeePercent == 0 {
		cfg.FeePercent = 3.0
	}

	return cfg, nil
}
