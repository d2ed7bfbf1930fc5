// Package config provides configuration management for the readers sandbox
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds all configuration for the sandbox
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Auth     AuthConfig
	LogLevel slog.Level
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig selects where readers are kept
type StoreConfig struct {
	Driver string // memory or postgres
	DSN    string
}

// AuthConfig holds the client credentials and token settings
type AuthConfig struct {
	JWTSecret    string
	ClientID     string
	ClientSecret string
	TokenTTL     time.Duration
}

// Load loads configuration from environment with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SANDBOX_PORT", "8080"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Driver: getEnv("SANDBOX_STORE", "memory"),
			DSN:    getEnv("SANDBOX_DB_DSN", "host=localhost dbname=sandbox sslmode=disable"),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("SANDBOX_JWT_SECRET", "sandbox-dev-secret-change-me"),
			ClientID:     getEnv("SANDBOX_CLIENT_ID", "sandbox-client"),
			ClientSecret: getEnv("SANDBOX_CLIENT_SECRET", "sandbox-secret"),
			TokenTTL:     getDuration("SANDBOX_TOKEN_TTL", time.Hour),
		},
		LogLevel: getLevel("SANDBOX_LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(os.Getenv(key)))); err != nil {
		return defaultValue
	}
	return level
}
