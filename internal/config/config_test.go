package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "stocklink.db", cfg.DBPath)
	assert.Equal(t, "https://ecom-api.posti.com", cfg.APIBaseURL)
	assert.Equal(t, "https://argon.ecom-api.posti.com", cfg.APITestBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STOCKLINK_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("STOCKLINK_DB_PATH", "/var/lib/stocklink/data.db")
	t.Setenv("STOCKLINK_API_BASE_URL", "https://api.example.test")
	t.Setenv("STOCKLINK_API_TEST_BASE_URL", "https://sandbox.example.test")
	t.Setenv("STOCKLINK_HTTP_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/stocklink/data.db", cfg.DBPath)
	assert.Equal(t, "https://api.example.test", cfg.APIBaseURL)
	assert.Equal(t, "https://sandbox.example.test", cfg.APITestBaseURL)
	assert.Equal(t, 90*time.Second, cfg.HTTPTimeout)
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("STOCKLINK_HTTP_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STOCKLINK_HTTP_TIMEOUT")
}
