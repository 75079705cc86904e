package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env if present. Missing file is fine in production where
// variables come from the environment directly.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Invalid duration for %s, using default", key)
	}
	return defaultValue
}

// JWTSecret returns the signing key for bearer tokens.
func JWTSecret() []byte {
	return []byte(GetEnv("JWT_SECRET", "shopwise-dev-secret"))
}

// TokenTTL returns how long issued tokens stay valid.
func TokenTTL() time.Duration {
	return time.Duration(GetEnvInt("JWT_TTL_HOURS", 24)) * time.Hour
}
