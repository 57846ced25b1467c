package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CasdoorConfig holds the identity platform connection settings.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// PaystackConfig holds the payment gateway settings.
type PaystackConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
}

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	KafkaBrokers       []string
	NotificationsTopic string

	Casdoor  CasdoorConfig
	Paystack PaystackConfig

	// Product settings
	ApplicationFee  int64         // tutor application fee, minor currency units
	BookingCooldown time.Duration // wait after a cancelled booking before the same pair may rebook
	ReviewSLADays   int           // advertised application review turnaround
}

// LoadConfig reads configuration from the environment, with .env support for
// local development.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		NotificationsTopic: getEnv("NOTIFICATIONS_TOPIC", "marketplace.notifications"),

		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
		Paystack: PaystackConfig{
			SecretKey:   os.Getenv("PAYSTACK_SECRET_KEY"),
			BaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			CallbackURL: os.Getenv("PAYSTACK_CALLBACK_URL"),
		},
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	fee, err := getEnvInt64("APPLICATION_FEE", 500000) // NGN 5,000.00
	if err != nil {
		return nil, err
	}
	cfg.ApplicationFee = fee

	cooldown, err := getEnvDuration("BOOKING_COOLDOWN", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.BookingCooldown = cooldown

	sla, err := getEnvInt("REVIEW_SLA_DAYS", 3)
	if err != nil {
		return nil, err
	}
	cfg.ReviewSLADays = sla

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
