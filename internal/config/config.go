package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"env"`
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Provider ProviderConfig `mapstructure:"provider"`
	Pricing  PricingConfig  `mapstructure:"pricing"`

	Coupons      CouponsConfig      `mapstructure:"coupons"`
	Alternatives AlternativesConfig `mapstructure:"alternatives"`
	Grouping     GroupingConfig     `mapstructure:"grouping"`
}

type RedisConfig struct {
	TrafficlightURI   string `mapstructure:"trafficlight_uri"`
	ResponsesCacheURI string `mapstructure:"responses_cache_uri"`
}

type PostgresConfig struct {
	// empty DSN runs without coupons
	DSN string `mapstructure:"dsn"`
}

type ProviderConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	Burst        int           `mapstructure:"burst"`
	CalendarTTL  time.Duration `mapstructure:"calendar_ttl"`

	Breaker BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxRequests         uint32        `mapstructure:"max_requests"`
	Interval            time.Duration `mapstructure:"interval"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
}

type PricingConfig struct {
	MinMarginRatio     string   `mapstructure:"min_margin_ratio"`
	Markdown           string   `mapstructure:"markdown"`
	SaleBadgeThreshold string   `mapstructure:"sale_badge_threshold"`
	SpecialHotels      []string `mapstructure:"special_hotels"`
}

type CouponsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type AlternativesConfig struct {
	PaddingDays int `mapstructure:"padding_days"`
}

type GroupingConfig struct {
	ResultTTL time.Duration `mapstructure:"result_ttl"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("redis.trafficlight_uri", "redis://localhost:6379/0")
	v.SetDefault("redis.responses_cache_uri", "redis://localhost:6379/1")

	v.SetDefault("postgres.dsn", "")

	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.client_id", "")
	v.SetDefault("provider.client_secret", "")
	v.SetDefault("provider.timeout", 8*time.Second)
	v.SetDefault("provider.rate_limit", 20.0)
	v.SetDefault("provider.burst", 40)
	v.SetDefault("provider.calendar_ttl", 15*time.Minute)
	v.SetDefault("provider.breaker.max_requests", 3)
	v.SetDefault("provider.breaker.interval", time.Minute)
	v.SetDefault("provider.breaker.timeout", 30*time.Second)
	v.SetDefault("provider.breaker.consecutive_failures", 5)

	v.SetDefault("pricing.min_margin_ratio", "0.10")
	v.SetDefault("pricing.markdown", "0.95")
	v.SetDefault("pricing.sale_badge_threshold", "5")
	v.SetDefault("pricing.special_hotels", []string{})

	v.SetDefault("coupons.cache_ttl", 5*time.Minute)
	v.SetDefault("alternatives.padding_days", 14)
	v.SetDefault("grouping.result_ttl", 30*time.Second)
}

// Load reads config.yaml when there is one; environment variables win, "provider.base_url" is PROVIDER_BASE_URL.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	return config, nil
}

// Policy builds the pricing policy, empty values keep the defaults.
func (c PricingConfig) Policy() (pricing.Policy, error) {
	policy := pricing.DefaultPolicy()

	values := []struct {
		name   string
		raw    string
		target *decimal.Decimal
	}{
		{"min_margin_ratio", c.MinMarginRatio, &policy.MinMarginRatio},
		{"markdown", c.Markdown, &policy.Markdown},
		{"sale_badge_threshold", c.SaleBadgeThreshold, &policy.SaleBadgeThreshold},
	}

	for _, value := range values {
		if value.raw == "" {
			continue
		}

		parsed, err := decimal.NewFromString(value.raw)
		if err != nil {
			return pricing.DefaultPolicy(), fmt.Errorf("pricing.%s %q: %w", value.name, value.raw, err)
		}

		*value.target = parsed
	}

	return policy.WithSpecialHotels(c.SpecialHotels...), nil
}
