package config

import (
	"testing"
	"time"
)

func TestLoadRequiresToken(t *testing.T) {
	setCoreEnvEmpty(t)

	if _, err := Load(); err == nil {
		t.Fatalf("Load() with no token should fail")
	}
}

func TestLoadPrefersBotToken(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("BOT_TOKEN", "primary")
	t.Setenv("DISCORD_TOKEN", "fallback")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BotToken != "primary" {
		t.Fatalf("BotToken = %q, want %q", cfg.BotToken, "primary")
	}
}

func TestLoadFallsBackToDiscordToken(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("DISCORD_TOKEN", "fallback")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BotToken != "fallback" {
		t.Fatalf("BotToken = %q, want %q", cfg.BotToken, "fallback")
	}
}

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("BOT_TOKEN", "token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CommandPrefix != "!" {
		t.Fatalf("CommandPrefix = %q, want %q", cfg.CommandPrefix, "!")
	}
	if cfg.TicketPrefix != "ticket-" {
		t.Fatalf("TicketPrefix = %q, want %q", cfg.TicketPrefix, "ticket-")
	}
	if cfg.TicketCategoryName != "Tickets" {
		t.Fatalf("TicketCategoryName = %q, want %q", cfg.TicketCategoryName, "Tickets")
	}
	if cfg.LogChannelName != "ticket-logs" {
		t.Fatalf("LogChannelName = %q, want %q", cfg.LogChannelName, "ticket-logs")
	}
	if cfg.CloseConfirmWindow != 5*time.Second {
		t.Fatalf("CloseConfirmWindow = %v, want 5s", cfg.CloseConfirmWindow)
	}
}

func TestLoadRejectsShortCloseWindow(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("TICKET_CLOSE_WINDOW", "250ms")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() with sub-second close window should fail")
	}
}

func TestLoadParsesCloseWindow(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("TICKET_CLOSE_WINDOW", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CloseConfirmWindow != 10*time.Second {
		t.Fatalf("CloseConfirmWindow = %v, want 10s", cfg.CloseConfirmWindow)
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"BOT_TOKEN",
		"DISCORD_TOKEN",
		"APP_COMMAND_PREFIX",
		"TICKET_CATEGORY_NAME",
		"TICKET_SUPPORT_ROLE",
		"TICKET_LOG_CHANNEL",
		"TICKET_CHANNEL_PREFIX",
		"TICKET_CLOSE_WINDOW",
		"APP_BIND_ADDR",
		"APP_METRICS_NAMESPACE",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_ALLOW_ANY_ORIGIN",
		"DATABASE_URL",
		"APP_SOURCE_CODE_URL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}
