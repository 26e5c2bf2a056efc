package config

import (
	"os"
)

type Config struct {
	DatabaseURL   string
	DataDir       string
	Port          string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
}

// Load reads the configuration from the environment. DatabaseURL decides
// the storage backend: when set, records live in Postgres, otherwise in
// JSON files under DataDir.
func Load() *Config {
	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DataDir:       getEnv("DATA_DIR", "data"),
		Port:          getEnv("PORT", "8080"),
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
