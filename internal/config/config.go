// Package config loads the dashboard configuration from the environment,
// optionally seeded from a .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Marketplace MarketplaceConfig
	Server      ServerConfig
	Redis       RedisConfig
	Log         LogConfig
}

type MarketplaceConfig struct {
	BaseURL   string        `validate:"required,http_url"`
	Language  string        `validate:"required"`
	UserAgent string        `validate:"required"`
	Timeout   time.Duration `validate:"gt=0"`
}

type ServerConfig struct {
	Port string `validate:"required,numeric"`
}

// RedisConfig enables the response cache when Addr is set.
type RedisConfig struct {
	Addr     string `validate:"omitempty,hostname_port"`
	Password string
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn warning error"`
	Pretty bool
}

// Load reads .env (if present) and the environment, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Marketplace: MarketplaceConfig{
			BaseURL:   getEnv("MARKETPLACE_BASE_URL", "https://test.teaching-me.org"),
			Language:  getEnv("MARKETPLACE_LANGUAGE", "en"),
			UserAgent: getEnv("USER_AGENT", "teaching-price-dashboard/0.1.0"),
			Timeout:   getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Pretty: getBoolEnv("LOG_PRETTY", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Addr is the listen address of the dashboard server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
