package bedbank

import (
	"context"
	jsonEncoding "encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"bitbucket.org/crgw/hotel-hub/internal/tools/caching"
	"bitbucket.org/crgw/hotel-hub/internal/tools/requesting"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	RateLimit    float64
	Burst        int
	CalendarTTL  time.Duration
	Breaker      requesting.BreakerSettings
}

type bedbankHotels struct {
	config        Config
	redis         *redis.Client
	httpTransport http.RoundTripper
	limiter       *rate.Limiter
	breaker       *gobreaker.CircuitBreaker
}

func (b *bedbankHotels) QueryAvailability(
	ctx context.Context,
	query schema.AvailabilityQuery,
	logger *zerolog.Logger,
) (schema.ProviderAvailability, error) {
	availabilityRequest := availabilityRequest{
		query:   query,
		logger:  logger,
		client:  b.client(logger),
		auth:    b.authRequest(logger),
		baseURL: b.config.BaseURL,
	}

	return availabilityRequest.Execute(ctx)
}

func (b *bedbankHotels) QueryCalendar(
	ctx context.Context,
	query schema.CalendarQuery,
	logger *zerolog.Logger,
) (schema.ProviderCalendar, error) {
	calendarRequest := calendarRequest{
		query:   query,
		logger:  logger,
		client:  b.client(logger),
		auth:    b.authRequest(logger),
		baseURL: b.config.BaseURL,
		cache:   caching.NewRedisCache(b.redis),
		ttl:     b.config.CalendarTTL,
	}

	return calendarRequest.Execute(ctx)
}

// TrafficLightGroupingCacheKey identifies availability queries that can share one provider call.
func (b *bedbankHotels) TrafficLightGroupingCacheKey(
	ctx context.Context,
	query schema.AvailabilityQuery,
	logger *zerolog.Logger,
) string {
	return fmt.Sprintf(
		"bedbank:availability:%s:%s:%s:%s:%s",
		b.config.BaseURL, query.HotelID, query.CheckIn, query.CheckOut, query.Party.Key,
	)
}

func (b *bedbankHotels) authRequest(logger *zerolog.Logger) *authRequest {
	return &authRequest{
		config: b.config,
		logger: logger,
		client: b.client(logger),
		cache:  caching.NewRedisCache(b.redis),
	}
}

func (b *bedbankHotels) client(logger *zerolog.Logger) *http.Client {
	return &http.Client{
		Timeout: b.config.Timeout,
		Transport: &requesting.InterceptorTransport{
			Transport: b.httpTransport,
			Middlewares: []requesting.TransportMiddleware{
				requesting.NewLoggingTransportMiddleware(logger),
				requesting.NewBreakerTransportMiddleware(b.breaker),
				requesting.NewLimiterTransportMiddleware(b.limiter),
			},
		},
	}
}

// getJSON requests url with the bearer token and decodes the response into destination.
func getJSON(ctx context.Context, client *http.Client, url string, token string, destination any) error {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return schema.NewConnectionError(err.Error())
	}

	httpRequest.Header.Set("Authorization", "Bearer "+token)
	httpRequest.Header.Set("Accept", "application/json")

	response, e := requesting.RequestErrors(client.Do(httpRequest))
	if e != nil {
		return e
	}
	defer response.Body.Close()

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return schema.NewConnectionError(err.Error())
	}

	if err := jsonEncoding.Unmarshal(bodyBytes, destination); err != nil {
		return schema.NewProviderError("invalid response body: " + err.Error())
	}

	return nil
}

func New(config Config, redisClient *redis.Client, log *zerolog.Logger) *bedbankHotels {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 32

	if config.Breaker.Name == "" {
		config.Breaker.Name = "bedbank"
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	return &bedbankHotels{
		config:        config,
		redis:         redisClient,
		httpTransport: transport,
		limiter:       rate.NewLimiter(limit, max(config.Burst, 1)),
		breaker:       requesting.NewBreaker(config.Breaker, log),
	}
}
