package grouping

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/tools/caching"
	"bitbucket.org/crgw/hotel-hub/internal/tools/slowlog"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const lockTTL = 1 * time.Minute

type storage struct {
	redis   *redis.Client
	log     *zerolog.Logger
	slowLog slowlog.Logger
}

func (s *storage) AcquireLock(ctx context.Context, cacheKey string) (bool, error) {
	return s.redis.SetNX(ctx, cacheKey, "", lockTTL).Result()
}

// ReleaseLock runs on a fresh context, the lock has to go even when the request was cancelled.
func (s *storage) ReleaseLock(_ context.Context, cacheKey string) {
	s.redis.Del(context.Background(), cacheKey)
}

func (s *storage) StoreResult(ctx context.Context, resultKey string, payload []byte, duration time.Duration) {
	s.slowLog.Start("grouping:compression:compress")
	compressed, err := caching.Deflate(payload)
	s.slowLog.Stop("grouping:compression:compress")

	if err != nil {
		s.log.Err(err).Msg("Unable to compress the provider result")
		return
	}

	if err := s.redis.Set(ctx, resultKey, compressed, duration).Err(); err != nil {
		s.log.Err(err).Str("key", resultKey).Msg("Unable to store the provider result")
	}
}

// FetchResult returns nil without an error when nothing is stored under resultKey.
func (s *storage) FetchResult(ctx context.Context, resultKey string) ([]byte, error) {
	compressed, err := s.redis.Get(ctx, resultKey).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	s.slowLog.Start("grouping:compression:decompress")
	defer s.slowLog.Stop("grouping:compression:decompress")

	return caching.Inflate(compressed)
}
