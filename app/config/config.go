package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"member-portal/app/domain"
)

// Config holds all configuration for the member portal
type Config struct {
	// Server
	Port     string `env:"PORT" default:"9600"`
	Host     string `env:"HOST" default:"0.0.0.0"`
	LogLevel string `env:"LOG_LEVEL" default:"info"`

	// Storage mode: which backend the session routes through. Resolved once
	// at startup; a running session never changes mode.
	StorageMode domain.StorageMode `env:"STORAGE_MODE" default:"remote"`

	// Remote backend
	RemoteAPIURL  string        `env:"REMOTE_API_URL"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" default:"30s"`
	VerifyTimeout time.Duration `env:"VERIFY_TIMEOUT" default:"10s"`

	// Local backend
	LocalDBPath      string `env:"LOCAL_DB_PATH" default:"member-portal.db"`
	LocalTokenSecret string `env:"LOCAL_TOKEN_SECRET"`

	// Sessions
	SessionTTL time.Duration `env:"SESSION_TTL" default:"24h"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{}

	// Server configuration
	config.Port = getEnvOrDefault("PORT", "9600")
	config.Host = getEnvOrDefault("HOST", "0.0.0.0")
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Storage mode
	mode, err := domain.ParseStorageMode(getEnvOrDefault("STORAGE_MODE", "remote"))
	if err != nil {
		return nil, err
	}
	config.StorageMode = mode

	// Remote backend
	config.RemoteAPIURL = os.Getenv("REMOTE_API_URL")

	config.RemoteTimeout, err = getDurationEnv("REMOTE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	config.VerifyTimeout, err = getDurationEnv("VERIFY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	// Local backend
	config.LocalDBPath = getEnvOrDefault("LOCAL_DB_PATH", "member-portal.db")
	config.LocalTokenSecret = os.Getenv("LOCAL_TOKEN_SECRET")

	// Sessions
	config.SessionTTL, err = getDurationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate port
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %s", c.Port)
	}

	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	// Mode-specific requirements: exactly one backend is configured and used
	switch c.StorageMode {
	case domain.ModeRemote:
		if c.RemoteAPIURL == "" {
			return fmt.Errorf("REMOTE_API_URL is required in remote mode")
		}
	case domain.ModeLocal:
		if c.LocalTokenSecret == "" {
			return fmt.Errorf("LOCAL_TOKEN_SECRET is required in local mode")
		}
		if c.LocalDBPath == "" {
			return fmt.Errorf("LOCAL_DB_PATH is required in local mode")
		}
	default:
		return fmt.Errorf("unknown storage mode: %s", c.StorageMode)
	}

	// Validate timeouts
	if c.RemoteTimeout < time.Second {
		return fmt.Errorf("remote timeout must be at least 1 second, got: %v", c.RemoteTimeout)
	}
	if c.VerifyTimeout < time.Second {
		return fmt.Errorf("verify timeout must be at least 1 second, got: %v", c.VerifyTimeout)
	}

	// Validate session TTL (minimum 1 minute)
	if c.SessionTTL < time.Minute {
		return fmt.Errorf("session TTL must be at least 1 minute, got: %v", c.SessionTTL)
	}

	return nil
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
