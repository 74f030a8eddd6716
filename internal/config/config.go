// Package config provides configuration management for the streak service.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server       ServerConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
	Logging      LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig holds Redis configuration.
// URL takes precedence over the discrete host/port fields when set.
type RedisConfig struct {
	URL             string
	Host            string
	Port            string
	Password        string
	DB              int
	MaxConnections  int
	KeyPrefix       string
	ConnectAttempts int
}

// RateLimitConfig holds per-client HTTP rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	TrustProxy        bool // Key clients on X-Forwarded-For; only behind a proxy that sets it
}

// NotificationConfig holds notification delivery configuration
type NotificationConfig struct {
	Enabled            bool
	Workers            int
	QueueSize          int
	Timeout            time.Duration
	TargetURL          string
	BreakerMaxFailures int
	BreakerTimeout     time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string
	Format     string
	File       string // Optional rolling log file
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:             getEnv("REDIS_URL", ""),
			Host:            getEnv("REDIS_HOST", "localhost"),
			Port:            getEnv("REDIS_PORT", "6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              getEnvAsInt("REDIS_DB", 0),
			MaxConnections:  getEnvAsInt("REDIS_MAX_CONNECTIONS", 50),
			KeyPrefix:       getEnv("REDIS_KEY_PREFIX", "bm"),
			ConnectAttempts: getEnvAsInt("REDIS_CONNECT_ATTEMPTS", 5),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsInt("RATE_LIMIT_RPS", 20),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 40),
			TrustProxy:        getEnvAsBool("RATE_LIMIT_TRUST_PROXY", false),
		},
		Notification: NotificationConfig{
			Enabled:            getEnvAsBool("NOTIFICATION_ENABLED", true),
			Workers:            getEnvAsInt("NOTIFICATION_WORKERS", 4),
			QueueSize:          getEnvAsInt("NOTIFICATION_QUEUE_SIZE", 256),
			Timeout:            getEnvAsDuration("NOTIFICATION_TIMEOUT", 5*time.Second),
			TargetURL:          getEnv("NOTIFICATION_TARGET_URL", ""),
			BreakerMaxFailures: getEnvAsInt("NOTIFICATION_BREAKER_MAX_FAILURES", 5),
			BreakerTimeout:     getEnvAsDuration("NOTIFICATION_BREAKER_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 7),
			Compress:   getEnvAsBool("LOG_COMPRESS", false),
		},
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
