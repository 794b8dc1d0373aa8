package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort           int
	SessionSecret        string
	SessionSecure        bool   // Secure cookie attribute
	StoreBackend         string // "memory" or "sqlite"
	StoreDSN             string
	EventRetentionDays   int
	HousekeepingSchedule string // standard cron expression
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	retention, err := strconv.Atoi(getEnv("EVENT_RETENTION_DAYS", "7"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:           port,
		SessionSecret:        getEnv("SESSION_SECRET", "dev-session-secret"),
		SessionSecure:        getEnv("APP_ENV", "") == "production",
		StoreBackend:         getEnv("STORE_BACKEND", "memory"),
		StoreDSN:             getEnv("STORE_DSN", ":memory:"),
		EventRetentionDays:   retention,
		HousekeepingSchedule: getEnv("HOUSEKEEPING_SCHEDULE", "0 3 * * *"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
