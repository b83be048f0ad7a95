package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	BackendURL  string
	RedisURL    string
	DatabaseURL string
	Environment string
	Events      EventConfig
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine outside development; env vars still apply.
	_ = godotenv.Load()

	return &Config{
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:8080"),
		RedisURL:    getEnv("REDIS_URL", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
		Events: EventConfig{
			Enabled:      getEnv("EVENTS_ENABLED", "false") == "true",
			Publisher:    getEnv("EVENTS_PUBLISHER", "mock"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			SessionTopic: getEnv("SESSION_TOPIC", "delivery_sessions"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
