package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config collects the environment-driven settings for the service.
type Config struct {
	// LogMode selects the logger preset ("dev" or "prod").
	LogMode string
	// HTTPAddr is the listen address for the API server.
	HTTPAddr string
	// DBType selects the driver: "postgres" or "sqlite".
	DBType string
	// DatabaseURL is the Postgres DSN; ignored for sqlite.
	DatabaseURL string
	// SQLitePath is the database file for sqlite.
	SQLitePath string
	// TelegramToken enables the Telegram reminder notifier when set.
	TelegramToken string
	// NotificationStartHour and NotificationEndHour bound the daily window
	// in which reminders may be sent (inclusive, 0-23).
	NotificationStartHour int
	NotificationEndHour   int
}

// Load reads .env if present, then the environment, applying defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		LogMode:               getEnv("LOG_MODE", "dev"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DBType:                getEnv("DB_TYPE", "postgres"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		SQLitePath:            getEnv("SQLITE_PATH", "data/revise.db"),
		TelegramToken:         getEnv("TELEGRAM_BOT_TOKEN", ""),
		NotificationStartHour: getEnvInt("NOTIFICATION_START_HOUR", 8),
		NotificationEndHour:   getEnvInt("NOTIFICATION_END_HOUR", 22),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
