package grouping

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/platform/interfaces"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type GroupableProvider interface {
	interfaces.WithAvailability
	interfaces.WithTrafficLightGrouping
}

type Options struct {
	CreateManager func(
		redis *redis.Client,
		log *zerolog.Logger,
		cacheKey string,
		resultTTL time.Duration,
	) RequestManager
	RedisClient *redis.Client
	ResultTTL   time.Duration
}

// Provider sends identical concurrent availability queries to the wrapped provider once.
type Provider struct {
	next    GroupableProvider
	options Options
}

func NewProvider(next GroupableProvider, options Options) *Provider {
	if options.CreateManager == nil {
		options.CreateManager = NewRequestManager
	}

	return &Provider{
		next:    next,
		options: options,
	}
}

func (p *Provider) QueryAvailability(
	ctx context.Context,
	query schema.AvailabilityQuery,
	log *zerolog.Logger,
) (schema.ProviderAvailability, error) {
	cacheKey := p.next.TrafficLightGroupingCacheKey(ctx, query, log)
	manager := p.options.CreateManager(p.options.RedisClient, log, cacheKey, p.options.ResultTTL)

	payload, err := manager.HandleRequest(ctx, func() ([]byte, error) {
		availability, err := p.next.QueryAvailability(ctx, query, log)
		if err != nil {
			return nil, err
		}

		return json.Marshal(availability)
	})

	if err != nil {
		return schema.ProviderAvailability{}, err
	}

	var availability schema.ProviderAvailability
	if err := json.Unmarshal(payload, &availability); err != nil {
		return schema.ProviderAvailability{}, fmt.Errorf("grouped result %s: %w", cacheKey, err)
	}

	return availability, nil
}
