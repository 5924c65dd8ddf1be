package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Demo API settings (cmd/demoapi only)
	DemoAPIPort    string
	DemoSeedRecord bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:5000"),
		HTTPTimeout:    getEnvAsDuration("HTTP_TIMEOUT", 20*time.Second),
		DemoAPIPort:    getEnv("DEMO_API_PORT", "5000"),
		DemoSeedRecord: getEnvAsBool("DEMO_API_SEED", true),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
