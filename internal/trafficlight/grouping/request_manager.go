package grouping

import (
	"context"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/tools/slowlog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const pollInterval = 400 * time.Millisecond

type RequestManager interface {
	HandleRequest(context.Context, func() ([]byte, error)) ([]byte, error)
}

type Storage interface {
	AcquireLock(ctx context.Context, cacheKey string) (bool, error)
	ReleaseLock(ctx context.Context, cacheKey string)
	StoreResult(ctx context.Context, resultKey string, payload []byte, duration time.Duration)
	FetchResult(ctx context.Context, resultKey string) ([]byte, error)
}

// requestManager lets one caller per cache key reach the provider while the others wait for its stored result.
type requestManager struct {
	cache        Storage
	log          *zerolog.Logger
	slowLog      slowlog.Logger
	cacheKey     string
	resultTTL    time.Duration
	pollInterval time.Duration
}

func (m *requestManager) requestProviderAndStore(
	resultKey string,
	requester func() ([]byte, error),
) ([]byte, error) {
	m.slowLog.Start("grouping:requestProviderAndStore")
	defer m.slowLog.Stop("grouping:requestProviderAndStore")

	// failures are not stored, waiting callers will try themselves
	defer m.cache.ReleaseLock(context.Background(), m.cacheKey)

	payload, err := requester()
	if err != nil {
		m.log.Err(err).Msg("Unable to request provider")
		return nil, err
	}

	m.cache.StoreResult(context.Background(), resultKey, payload, m.resultTTL)

	return payload, nil
}

func (m *requestManager) requestOrWait(ctx context.Context, requester func() ([]byte, error)) ([]byte, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resultKey := "res:" + m.cacheKey

		m.slowLog.Start("grouping:fetchFromCache")
		payload, err := m.cache.FetchResult(ctx, resultKey)
		m.slowLog.Stop("grouping:fetchFromCache")

		if err != nil {
			m.log.Err(err).
				Str("label", "cache").
				Bool("hit", false).
				Str("key", resultKey).
				Msg("Error fetching from cache")

			return requester()
		}

		if payload != nil {
			m.log.Info().
				Str("label", "cache").
				Bool("hit", true).
				Str("key", m.cacheKey).
				Msg("Used grouped provider result")

			return payload, nil
		}

		canMakeTheRequest, err := m.cache.AcquireLock(ctx, m.cacheKey)
		if err != nil || canMakeTheRequest {
			return m.requestProviderAndStore(resultKey, requester)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.pollInterval):
		}
	}
}

func (m *requestManager) HandleRequest(ctx context.Context, requester func() ([]byte, error)) ([]byte, error) {
	m.slowLog.Start("grouping:HandleRequest")
	defer m.slowLog.Stop("grouping:HandleRequest")

	return m.requestOrWait(ctx, requester)
}

func NewRequestManager(
	redis *redis.Client,
	log *zerolog.Logger,
	cacheKey string,
	resultTTL time.Duration,
) RequestManager {
	logWithGroupingId := log.With().Str("groupingId", uuid.New().String()).Logger()
	slowLog := slowlog.CreateLogger(&logWithGroupingId)

	return &requestManager{
		cacheKey: cacheKey,
		cache: &storage{
			redis:   redis,
			log:     &logWithGroupingId,
			slowLog: slowLog,
		},
		log:          &logWithGroupingId,
		slowLog:      slowLog,
		resultTTL:    resultTTL,
		pollInterval: pollInterval,
	}
}
