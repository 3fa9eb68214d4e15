package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	SessionSecret   string
	GinMode         string
	LogLevel        string
	Environment     string
	ListenAddr      string
	InviteSweepSpec string
}

func Load() *Config {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	return &Config{
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "taskflow"),
		DBPassword:      getEnv("DB_PASSWORD", "taskflow"),
		DBName:          getEnv("DB_NAME", "taskflow"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		SessionSecret:   getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		InviteSweepSpec: getEnv("INVITE_SWEEP_SPEC", "@every 10m"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
