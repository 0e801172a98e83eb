package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI     string
	TelegramToken   string
	AIAPIKey        string
	AIBaseURL       string
	AIModel         string
	DefaultTimezone string
	CheckInterval   time.Duration
	MetricsAddr     string
	DevMode         bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	checkInterval, err := time.ParseDuration(getEnvOrDefault("CHECK_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECK_INTERVAL: %w", err)
	}
	if checkInterval <= 0 {
		return nil, fmt.Errorf("invalid CHECK_INTERVAL: must be positive, got %s", checkInterval)
	}

	tz := getEnvOrDefault("DEFAULT_TIMEZONE", "UTC")
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE: %w", err)
	}

	devMode, _ := strconv.ParseBool(os.Getenv("DEV_MODE"))

	return &Config{
		DatabaseURI:     os.Getenv("DATABASE_URI"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		AIAPIKey:        os.Getenv("AI_API_KEY"),
		AIBaseURL:       getEnvOrDefault("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:         getEnvOrDefault("AI_MODEL", "openai/gpt-4o-mini"),
		DefaultTimezone: tz,
		CheckInterval:   checkInterval,
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		DevMode:         devMode,
	}, nil
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
