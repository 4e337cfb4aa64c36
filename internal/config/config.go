package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	RedisHost        string
	RedisPort        string
	SessionSecret    string
	GinMode          string
	ServerAddr       string
	AcceptAutoReject bool
}

func Load() *Config {
	// A missing .env is fine; deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "helpify"),
		DBPassword:       getEnv("DB_PASSWORD", "helpify"),
		DBName:           getEnv("DB_NAME", "helpify"),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		SessionSecret:    getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		ServerAddr:       getEnv("SERVER_ADDR", ":8080"),
		AcceptAutoReject: getEnv("ACCEPT_AUTO_REJECT", "true") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
