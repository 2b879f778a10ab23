// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the cache database, always absolute
	KrakenAPIKey    string
	KrakenAPISecret string // base64-encoded private key, never logged
	GeminiAPIKey    string // optional, enables text embeddings
	LogLevel        string
	Port            int
	DevMode         bool
	PriceCacheCron  string // cron expression for the price cache refresh job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("TRACKER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("GO_PORT", 8001),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		KrakenAPIKey:    getEnv("KRAKEN_API_KEY", ""),
		KrakenAPISecret: getEnv("KRAKEN_API_SECRET", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		PriceCacheCron:  getEnv("PRICE_CACHE_CRON", "@every 1m"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	// Kraken credentials are optional: public endpoints and analytics
	// work without them, private endpoints fail per-request.
	if (c.KrakenAPIKey == "") != (c.KrakenAPISecret == "") {
		return fmt.Errorf("KRAKEN_API_KEY and KRAKEN_API_SECRET must be set together")
	}

	return nil
}

// HasExchangeCredentials reports whether private exchange endpoints can
// be used.
func (c *Config) HasExchangeCredentials() bool {
	return c.KrakenAPIKey != "" && c.KrakenAPISecret != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
