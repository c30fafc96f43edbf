package caching_test

import (
	"context"
	"testing"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/tools/caching"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacher(t *testing.T) {
	t.Run("should store deflated json", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		cache := caching.NewRedisCache(redisClient)

		value := cachedValue{Name: "calendar", Count: 3}
		encoded, err := caching.Encode(value)
		require.NoError(t, err)

		mock.ExpectSetEx("key", encoded, time.Minute).SetVal("OK")

		err = cache.Store(context.Background(), "key", value, time.Minute)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should fetch and decode a stored value", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		cache := caching.NewRedisCache(redisClient)

		encoded, _ := caching.Encode(cachedValue{Name: "calendar", Count: 3})
		mock.ExpectGet("key").SetVal(string(encoded))

		var destination cachedValue
		ok := cache.Fetch(context.Background(), "key", &destination)

		assert.True(t, ok)
		assert.Equal(t, cachedValue{Name: "calendar", Count: 3}, destination)
	})

	t.Run("should report a miss", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		cache := caching.NewRedisCache(redisClient)

		mock.ExpectGet("key").RedisNil()

		var destination cachedValue
		assert.False(t, cache.Fetch(context.Background(), "key", &destination))
	})

	t.Run("should treat garbage as a miss", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		cache := caching.NewRedisCache(redisClient)

		mock.ExpectGet("key").SetVal("not deflated")

		var destination cachedValue
		assert.False(t, cache.Fetch(context.Background(), "key", &destination))
	})

	t.Run("should round trip through deflate", func(t *testing.T) {
		compressed, err := caching.Deflate([]byte("hello hello hello"))
		require.NoError(t, err)

		inflated, err := caching.Inflate(compressed)
		require.NoError(t, err)
		assert.Equal(t, "hello hello hello", string(inflated))
	})
}
