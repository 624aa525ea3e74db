package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config contains all runtime settings for the concierge bot.
type Config struct {
	BotToken string

	CommandPrefix      string
	TicketCategoryName string
	SupportRoleName    string
	LogChannelName     string
	TicketPrefix       string
	CloseConfirmWindow time.Duration

	BindAddr         string
	MetricsNamespace string
	ShutdownTimeout  time.Duration
	AllowAnyOrigin   bool

	DatabaseURL   string
	SourceCodeURL string
}

// Load reads environment variables and applies safe defaults. The bot token
// is required: BOT_TOKEN is preferred, DISCORD_TOKEN is the fallback.
func Load() (Config, error) {
	cfg := Config{
		BotToken:           firstNonEmptyEnv("BOT_TOKEN", "DISCORD_TOKEN"),
		CommandPrefix:      envOrDefault("APP_COMMAND_PREFIX", "!"),
		TicketCategoryName: envOrDefault("TICKET_CATEGORY_NAME", "Tickets"),
		SupportRoleName:    envOrDefault("TICKET_SUPPORT_ROLE", "Support"),
		LogChannelName:     envOrDefault("TICKET_LOG_CHANNEL", "ticket-logs"),
		TicketPrefix:       envOrDefault("TICKET_CHANNEL_PREFIX", "ticket-"),
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "concierge"),
		DatabaseURL:        trimmedEnv("DATABASE_URL"),
		SourceCodeURL:      envOrDefault("APP_SOURCE_CODE_URL", "https://github.com/halcyonlabs/concierge"),
		CloseConfirmWindow: 5 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		AllowAnyOrigin:     false,
	}

	var err error
	cfg.CloseConfirmWindow, err = durationFromEnv("TICKET_CLOSE_WINDOW", cfg.CloseConfirmWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN environment variable not set (DISCORD_TOKEN also accepted)")
	}
	if cfg.CommandPrefix == "" {
		return Config{}, fmt.Errorf("APP_COMMAND_PREFIX must not be empty")
	}
	if cfg.TicketPrefix == "" {
		return Config{}, fmt.Errorf("TICKET_CHANNEL_PREFIX must not be empty")
	}
	if cfg.CloseConfirmWindow < time.Second {
		return Config{}, fmt.Errorf("TICKET_CLOSE_WINDOW must be at least 1s")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		if v := trimmedEnv(key); v != "" {
			return v
		}
	}
	return ""
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
