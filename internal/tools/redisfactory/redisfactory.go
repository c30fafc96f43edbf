package redisfactory

import (
	"fmt"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/config"
	"github.com/redis/go-redis/v9"
)

// If one connection needs to be broken up new function should be introduced
// example: TrafficlightCalendarClient()

type Factory struct {
	trafficlightCache *redis.Client
	responsesCache    *redis.Client
}

func newClient(uri string) (*redis.Client, error) {
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid redis uri: %w", err)
	}

	opt.DialTimeout = 4 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	return redis.NewClient(opt), nil
}

func New(cfg config.RedisConfig) (*Factory, error) {
	trafficlightCache, err := newClient(cfg.TrafficlightURI)
	if err != nil {
		return nil, fmt.Errorf("trafficlight: %w", err)
	}

	responsesCache, err := newClient(cfg.ResponsesCacheURI)
	if err != nil {
		return nil, fmt.Errorf("responses cache: %w", err)
	}

	return NewFromClients(trafficlightCache, responsesCache), nil
}

func NewFromClients(trafficlightCache, responsesCache *redis.Client) *Factory {
	return &Factory{
		trafficlightCache: trafficlightCache,
		responsesCache:    responsesCache,
	}
}

func (f *Factory) TrafficlightClient() *redis.Client {
	return f.trafficlightCache
}

func (f *Factory) ResponsesCacheClient() *redis.Client {
	return f.responsesCache
}
