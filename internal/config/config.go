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

// Config carries every runtime setting, loaded from the environment with
// an optional .env file for development.
type Config struct {
	DatabaseURL      string
	DBMaxConns       int
	DBConnectRetries int

	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL     string
	KafkaBrokers []string

	GradingAPIURL string
	GradingAPIKey string
	GradingModel  string

	SessionTTL time.Duration
}

// LoadConfig reads the environment. Only the database URL is mandatory;
// everything else has a workable default or is optional.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxConns:       envInt("DB_MAX_CONNS", 10),
		DBConnectRetries: envInt("DB_CONNECT_RETRIES", 10),
		Port:             envString("PORT", "8080"),
		Environment:      envString("ENVIRONMENT", "development"),
		LogLevel:         parseLogLevel(os.Getenv("LOG_LEVEL")),
		RedisURL:         os.Getenv("REDIS_URL"),
		GradingAPIURL:    os.Getenv("GRADING_API_URL"),
		GradingAPIKey:    os.Getenv("GRADING_API_KEY"),
		GradingModel:     os.Getenv("GRADING_MODEL"),
		SessionTTL:       envDuration("SESSION_TTL", 14*24*time.Hour),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GradingAPIURL != "" && cfg.GradingAPIKey == "" {
		return nil, fmt.Errorf("GRADING_API_KEY is required when GRADING_API_URL is set")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
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
