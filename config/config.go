// Package config loads the dcasim configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Market data providers.
const (
	ProviderYahoo = "yahoo"
	ProviderEODHD = "eodhd"
	ProviderCSV   = "csv"
)

// Config holds application configuration
type Config struct {
	Provider    string // yahoo, eodhd or csv
	EODHDAPIKey string
	CSVDir      string
	Cache       string // sqlite file caching prices, empty for none
	LogLevel    string
	LogPretty   bool
	Listen      string
	Benchmark   string
}

// Load reads the .env file, if any, then the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Provider:    getEnv("DCA_PROVIDER", ProviderYahoo),
		EODHDAPIKey: getEnv("EODHD_API_KEY", ""),
		CSVDir:      getEnv("DCA_CSV_DIR", ""),
		Cache:       getEnv("DCA_CACHE", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnvAsBool("LOG_PRETTY", false),
		Listen:      getEnv("DCA_LISTEN", ":8080"),
		Benchmark:   getEnv("DCA_BENCHMARK", "ACWI"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected provider is configured.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderYahoo:
	case ProviderEODHD:
		if c.EODHDAPIKey == "" {
			return fmt.Errorf("provider %s requires EODHD_API_KEY", c.Provider)
		}
	case ProviderCSV:
		if c.CSVDir == "" {
			return fmt.Errorf("provider %s requires DCA_CSV_DIR", c.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q, want %s, %s or %s", c.Provider, ProviderYahoo, ProviderEODHD, ProviderCSV)
	}
	if c.Benchmark == "" {
		return fmt.Errorf("DCA_BENCHMARK cannot be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
