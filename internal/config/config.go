package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	LogLevel     string

	// Lucra external API. When either value is empty the webhook intake
	// endpoints still work, but outbound Lucra calls will fail.
	LucraAPIURL string
	LucraAPIKey string
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "4000")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:   port,
		DatabasePath: getEnv("DATABASE_PATH", "./rng.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LucraAPIURL:  getEnv("LUCRA_API_URL", ""),
		LucraAPIKey:  getEnv("LUCRA_API_KEY", ""),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
