package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"police-dashboard/logging"
)

// Config holds application configuration
type Config struct {
	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// CacheTTLSeconds bounds how long dropdown values and the report stay cached
	CacheTTLSeconds int

	// Data files
	Data DataConfig

	// API configuration
	APIPort int

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// DataConfig holds file locations used by the preprocessor and loader
type DataConfig struct {
	RawPath   string // Raw traffic-stop export read by the preprocessor
	CleanPath string // Cleaned file written by the preprocessor and read by the loader
	BatchSize int    // Rows per INSERT batch during bulk load
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		logging.Info().Msg("No .env file found, using environment variables")
	}

	return &Config{
		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "police_db"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "police"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", ""),
		DatabaseSSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),

		// Redis configuration
		RedisHost:       getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:       getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword:   getEnvOrDefault("REDIS_PASSWORD", ""),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 60),

		Data: DataConfig{
			RawPath:   getEnvOrDefault("RAW_DATA_PATH", "data/policedata.csv"),
			CleanPath: getEnvOrDefault("CLEAN_DATA_PATH", "data/clean_stops.csv"),
			BatchSize: getEnvInt("LOAD_BATCH_SIZE", 1000),
		},

		APIPort: getEnvInt("API_PORT", 8080),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "console"),
	}
}

// DSN builds the PostgreSQL connection URL. Credentials are escaped, so
// passwords may contain spaces, quotes or URL delimiters.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DatabaseUser, c.DatabasePassword),
		Host:     net.JoinHostPort(c.DatabaseHost, c.DatabasePort),
		Path:     "/" + c.DatabaseName,
		RawQuery: url.Values{"sslmode": {c.DatabaseSSLMode}}.Encode(),
	}
	return u.String()
}

// Validate reports the first configuration value that cannot work
func (c *Config) Validate() error {
	if c.DatabaseHost == "" || c.DatabaseUser == "" || c.DatabaseName == "" {
		return fmt.Errorf("database host, user and name must be set")
	}
	if port, err := strconv.Atoi(c.DatabasePort); err != nil || port <= 0 {
		return fmt.Errorf("invalid database port: %q", c.DatabasePort)
	}
	if c.Data.BatchSize <= 0 {
		return fmt.Errorf("invalid load batch size: %d", c.Data.BatchSize)
	}
	if c.APIPort <= 0 {
		return fmt.Errorf("invalid api port: %d", c.APIPort)
	}
	return nil
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
