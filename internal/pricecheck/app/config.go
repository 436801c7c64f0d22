package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/pricecheck/pkg/authsdk"
)

type Config struct {
	APIURL      string        // REST backend origin (default: http://localhost:8000)
	StoreDSN    string        // credential store: sqlite:, file:, redis://, memory: (default: sqlite:pricecheck.db)
	CameraDir   string        // Optional: directory of frames replayed as the camera; empty means no camera
	PriceStore  string        // store whose price the check view shows (default: Walmart Canada)
	ScanFPS     int           // analysed frames per second (default: 15)
	HTTPTimeout time.Duration // backend request timeout (default: 10s)
	Env         string        // Environment (dev, staging, prod) (default: dev)
	LogLevel    string        // Log level (debug, info, warn, error) (default: info)
	LogFormat   string        // Log format (json, text) (default: json)
	Port        int           // HTTP server port (default: 3000)

	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading a .env file when one is
// present in the working directory.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		APIURL:              getEnvOrDefault("PRICECHECK_API_URL", "http://localhost:8000"),
		StoreDSN:            getEnvOrDefault("PRICECHECK_STORE", "sqlite:pricecheck.db"),
		CameraDir:           os.Getenv("PRICECHECK_CAMERA_DIR"),
		PriceStore:          getEnvOrDefault("PRICECHECK_PRICE_STORE", authsdk.DefaultPriceStore),
		ScanFPS:             getEnvIntOrDefault("PRICECHECK_SCAN_FPS", 15),
		HTTPTimeout:         getEnvDurationOrDefault("PRICECHECK_HTTP_TIMEOUT", authsdk.DefaultTimeout),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 3000),
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
