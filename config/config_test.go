package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.App.Timezone)
	assert.Equal(t, int64(500000), cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, int64(30000), cfg.Pricing.FlatShippingFee)
	assert.InDelta(t, 0.15, cfg.Pricing.PointsRate, 1e-9)
	assert.Empty(t, cfg.Jobs.ApplyPromotions)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadConfigYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := []byte(`
app:
  port: "9000"
  storeName: Court Side
pricing:
  flatShippingFee: 25000
jobs:
  staleOrderMaxAge: 2h
`)
	require.NoError(t, os.WriteFile(path, yamlBody, 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("STRIPE_EXCHANGE_RATE", "25000")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.App.Port, "env wins over yaml")
	assert.Equal(t, "Court Side", cfg.App.StoreName)
	assert.Equal(t, int64(25000), cfg.Pricing.FlatShippingFee)
	assert.Equal(t, 2*time.Hour, cfg.Jobs.StaleOrderMaxAge)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.InDelta(t, 25000, cfg.Stripe.ExchangeRate, 1e-9)
	assert.True(t, cfg.Log.Pretty)
}

func TestConfigLocation(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Location().String())

	cfg.App.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}
