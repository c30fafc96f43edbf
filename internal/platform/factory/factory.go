package factory

import (
	"fmt"
	"sync"

	"bitbucket.org/crgw/hotel-hub/internal/config"
	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
	"bitbucket.org/crgw/hotel-hub/internal/platform/implementations/bedbank"
	"bitbucket.org/crgw/hotel-hub/internal/tools/redisfactory"
	"bitbucket.org/crgw/hotel-hub/internal/tools/requesting"
	"github.com/rs/zerolog"
)

type Factory struct {
	redisFactory *redisfactory.Factory
	config       config.ProviderConfig
	log          *zerolog.Logger
	platforms    map[string]any
	mu           sync.Mutex
}

func (f *Factory) GetPlatform(name string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.platforms[name]

	if !ok {
		switch name {

		// Register all platforms here
		case "bedbank":
			f.platforms[name] = bedbank.New(bedbankConfig(f.config), f.redisFactory.ResponsesCacheClient(), f.log)
		default:
			return nil, fmt.Errorf("platform %s: %w", name, errors.ErrorUnknownPlatform)
		}
	}

	return f.platforms[name], nil
}

func bedbankConfig(c config.ProviderConfig) bedbank.Config {
	return bedbank.Config{
		BaseURL:      c.BaseURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Timeout:      c.Timeout,
		RateLimit:    c.RateLimit,
		Burst:        c.Burst,
		CalendarTTL:  c.CalendarTTL,
		Breaker: requesting.BreakerSettings{
			Name:                "bedbank",
			MaxRequests:         c.Breaker.MaxRequests,
			Interval:            c.Breaker.Interval,
			Timeout:             c.Breaker.Timeout,
			ConsecutiveFailures: c.Breaker.ConsecutiveFailures,
		},
	}
}

func NewFactory(redisFactory *redisfactory.Factory, config config.ProviderConfig, log *zerolog.Logger) *Factory {
	return &Factory{
		redisFactory: redisFactory,
		config:       config,
		log:          log,
		platforms:    make(map[string]any),
	}
}
