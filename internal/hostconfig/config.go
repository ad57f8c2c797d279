// Package hostconfig loads the demo host's environment-variable
// configuration: only the few knobs cmd/reconcached needs.
package hostconfig

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the demo host's runtime configuration.
type Config struct {
	LogLevel          string
	HTTPPort          int
	RefreshIntervalMs int64
	CleanupIntervalMs int64
}

// Load reads a .env file if present, then environment variables, applying
// fallbacks for anything unset.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPPort:          getEnvAsInt("HTTP_PORT", 8080),
		RefreshIntervalMs: getEnvAsInt64("REFRESH_INTERVAL_MS", 5000),
		CleanupIntervalMs: getEnvAsInt64("CLEANUP_INTERVAL_MS", 60000),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
