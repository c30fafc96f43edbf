package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should use defaults without a config file", func(t *testing.T) {
		cfg, err := config.Load(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 8*time.Second, cfg.Provider.Timeout)
		assert.Equal(t, uint32(5), cfg.Provider.Breaker.ConsecutiveFailures)
		assert.Equal(t, 14, cfg.Alternatives.PaddingDays)
		assert.Equal(t, 30*time.Second, cfg.Grouping.ResultTTL)
	})

	t.Run("should read the config file and let the environment win", func(t *testing.T) {
		dir := t.TempDir()
		content := []byte("port: \"9000\"\nprovider:\n  base_url: http://from-file\n  burst: 7\npricing:\n  special_hotels:\n    - \"100\"\n    - \"200\"\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

		t.Setenv("PROVIDER_BASE_URL", "http://from-env")

		cfg, err := config.Load(dir)
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, "http://from-env", cfg.Provider.BaseURL)
		assert.Equal(t, 7, cfg.Provider.Burst)
		assert.Equal(t, []string{"100", "200"}, cfg.Pricing.SpecialHotels)
	})

	t.Run("should fail on a broken config file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("port: [\n"), 0o600))

		_, err := config.Load(dir)
		assert.Error(t, err)
	})
}

func TestPricingPolicy(t *testing.T) {
	t.Run("should build the policy", func(t *testing.T) {
		policy, err := config.PricingConfig{
			MinMarginRatio: "0.12",
			SpecialHotels:  []string{"100"},
		}.Policy()
		require.NoError(t, err)

		assert.True(t, decimal.RequireFromString("0.12").Equal(policy.MinMarginRatio))
		assert.True(t, decimal.RequireFromString("0.95").Equal(policy.Markdown))
		assert.True(t, policy.IsSpecial("100"))
		assert.False(t, policy.IsSpecial("200"))
	})

	t.Run("should reject values that are not numbers", func(t *testing.T) {
		_, err := config.PricingConfig{Markdown: "lots"}.Policy()
		assert.ErrorContains(t, err, "pricing.markdown")
	})
}
