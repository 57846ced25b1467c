package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"garbage", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/marketplace")
	t.Setenv("BOOKING_COOLDOWN", "")
	t.Setenv("REVIEW_SLA_DAYS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.BookingCooldown != 24*time.Hour {
		t.Errorf("BookingCooldown = %v, want 24h", cfg.BookingCooldown)
	}
	if cfg.ReviewSLADays != 3 {
		t.Errorf("ReviewSLADays = %d, want 3", cfg.ReviewSLADays)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() expected error without DATABASE_URL")
	}
}

func TestLoadConfig_CooldownOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/marketplace")
	t.Setenv("BOOKING_COOLDOWN", "12h")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.BookingCooldown != 12*time.Hour {
		t.Errorf("BookingCooldown = %v, want 12h", cfg.BookingCooldown)
	}
}
