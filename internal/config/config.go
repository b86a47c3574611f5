package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	APIToken        string
	CountryCode     string
	MaxTextLength   int
	SendDelay       time.Duration
	SendConcurrency int

	BridgeURL   string
	BridgeToken string

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	AppEnv   string
	LogLevel string
}

// Load reads configuration from the environment, optionally seeded from a
// local .env file. The API token has no default: without it every protected
// route would be open, so its absence aborts startup before the bridge
// client is even constructed.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		APIToken:        getEnv("API_TOKEN", ""),
		CountryCode:     getEnv("COUNTRY_CODE", "51"),
		MaxTextLength:   getEnvInt("MAX_TEXT_LENGTH", 1000),
		SendDelay:       time.Duration(getEnvInt("SEND_DELAY_MS", 100)) * time.Millisecond,
		SendConcurrency: getEnvInt("SEND_CONCURRENCY", 1),
		BridgeURL:       getEnv("BRIDGE_URL", "http://localhost:3000"),
		BridgeToken:     getEnv("BRIDGE_TOKEN", ""),
		DBDriver:        getEnv("DB_DRIVER", "sqlite"),
		DBPath:          getEnv("DB_PATH", "./relay.db"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "whatsapp_relay"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		AppEnv:          getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cfg.APIToken == "" {
		return nil, errors.New("API_TOKEN is required")
	}
	if cfg.SendConcurrency < 1 {
		cfg.SendConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s, using default %d", key, fallback)
		return fallback
	}
	return n
}
