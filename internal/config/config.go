// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	Supplier    SupplierConfig
}

// SupplierConfig controls the external topic supplier.
type SupplierConfig struct {
	APIKey          string
	Model           string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	RefreshCount    int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	refreshCount := getEnvInt("TOPIC_REFRESH_COUNT", 5)
	if refreshCount <= 0 {
		refreshCount = 5
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/debatkamer.db"),
		Supplier: SupplierConfig{
			APIKey:          getEnv("PERPLEXITY_API_KEY", ""),
			Model:           getEnv("PERPLEXITY_MODEL", "llama-3.1-sonar-small-128k-online"),
			RequestTimeout:  getEnvDuration("SUPPLIER_TIMEOUT", 30*time.Second),
			RefreshInterval: getEnvDuration("TOPIC_REFRESH_INTERVAL", 24*time.Hour),
			RefreshCount:    refreshCount,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Supplier.RequestTimeout <= 0 {
		return fmt.Errorf("SUPPLIER_TIMEOUT must be > 0")
	}
	if c.Supplier.RefreshInterval <= 0 {
		return fmt.Errorf("TOPIC_REFRESH_INTERVAL must be > 0")
	}
	return nil
}

// SupplierEnabled returns true if the external topic supplier is configured.
func (c *Config) SupplierEnabled() bool {
	return c.Supplier.APIKey != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
