// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the infrastructure configuration loaded at startup. Runtime
// settings (credentials, sync interval, flags) live in the settings store
// and are managed through the admin API instead.
type Config struct {
	ListenAddr     string
	DBPath         string
	APIBaseURL     string
	APITestBaseURL string
	HTTPTimeout    time.Duration
}

// Load reads configuration from the environment, after loading a local .env
// file when one exists. All variables are optional:
// STOCKLINK_LISTEN_ADDR (127.0.0.1:8080), STOCKLINK_DB_PATH (stocklink.db),
// STOCKLINK_API_BASE_URL, STOCKLINK_API_TEST_BASE_URL, and
// STOCKLINK_HTTP_TIMEOUT (30s).
func Load() (*Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:     "127.0.0.1:8080",
		DBPath:         "stocklink.db",
		APIBaseURL:     "https://ecom-api.posti.com",
		APITestBaseURL: "https://argon.ecom-api.posti.com",
		HTTPTimeout:    30 * time.Second,
	}

	if v, ok := os.LookupEnv("STOCKLINK_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("STOCKLINK_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("STOCKLINK_API_BASE_URL"); ok {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv("STOCKLINK_API_TEST_BASE_URL"); ok {
		cfg.APITestBaseURL = v
	}
	if v, ok := os.LookupEnv("STOCKLINK_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STOCKLINK_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.HTTPTimeout = parsed
	}

	return cfg, nil
}
