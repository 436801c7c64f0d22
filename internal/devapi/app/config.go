package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer         string        // issuer claim for credentials (default: pricecheck-devapi)
	AccessTTL      time.Duration // access credential lifetime (default: 5m)
	RefreshTTL     time.Duration // refresh credential lifetime (default: 24h)
	SigningKeyFile string        // Optional: PEM Ed25519 key, generated when missing; empty means ephemeral
	PepperFile     string        // Optional: password pepper file; empty means ephemeral
	DatabaseDSN    string        // sqlite DSN (default: file::memory:)
	SeedUser       string        // Optional: username of a confirmed account created at startup
	SeedPassword   string        // password of the seed account
	SeedEmail      string        // email of the seed account
	LinkBase       string        // origin emailed account links point at (default: http://localhost:3000)
	Env            string        // Environment (dev, staging, prod) (default: dev)
	LogLevel       string        // Log level (debug, info, warn, error) (default: info)
	LogFormat      string        // Log format (json, text) (default: json)
	Port           int           // HTTP server port (default: 8000)

	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading a .env file when one is
// present in the working directory.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Issuer:              getEnvOrDefault("DEVAPI_ISSUER", "pricecheck-devapi"),
		AccessTTL:           getEnvDurationOrDefault("DEVAPI_ACCESS_TTL", 5*time.Minute),
		RefreshTTL:          getEnvDurationOrDefault("DEVAPI_REFRESH_TTL", 24*time.Hour),
		SigningKeyFile:      os.Getenv("DEVAPI_SIGNING_KEY_FILE"),
		PepperFile:          os.Getenv("DEVAPI_PEPPER_FILE"),
		DatabaseDSN:         getEnvOrDefault("DEVAPI_DATABASE", "file::memory:"),
		SeedUser:            getEnvOrDefault("DEVAPI_SEED_USER", "demo"),
		SeedPassword:        getEnvOrDefault("DEVAPI_SEED_PASSWORD", "demo-password"),
		SeedEmail:           getEnvOrDefault("DEVAPI_SEED_EMAIL", "demo@example.com"),
		LinkBase:            getEnvOrDefault("DEVAPI_LINK_BASE", "http://localhost:3000"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("DEVAPI_PORT", 8000),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
