package caching

import (
	"bytes"
	"compress/flate"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cacher keeps JSON values deflated in redis. Every failure on the read path is a miss.
type Cacher struct {
	redis *redis.Client
}

func NewRedisCache(redisClient *redis.Client) *Cacher {
	return &Cacher{redis: redisClient}
}

func Deflate(uncompressed []byte) ([]byte, error) {
	var buffer bytes.Buffer

	writer, err := flate.NewWriter(&buffer, flate.BestSpeed)
	if err != nil {
		return nil, err
	}

	if _, err := writer.Write(uncompressed); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}

	return buffer.Bytes(), nil
}

func Inflate(compressed []byte) ([]byte, error) {
	reader := flate.NewReader(bytes.NewReader(compressed))
	defer reader.Close()

	uncompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}

	return uncompressed, nil
}

// Encode is the stored form of a value.
func Encode(value any) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	return Deflate(b)
}

func (c *Cacher) Store(ctx context.Context, key string, value any, ttl time.Duration) error {
	encoded, err := Encode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	return c.redis.SetEx(ctx, key, encoded, ttl).Err()
}

// Fetch reports whether a value was found and decoded into destination.
func (c *Cacher) Fetch(ctx context.Context, key string, destination any) bool {
	found, err := c.lookup(ctx, key, destination)

	return found && err == nil
}

func (c *Cacher) lookup(ctx context.Context, key string, destination any) (bool, error) {
	stored, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	uncompressed, err := Inflate(stored)
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(uncompressed, destination); err != nil {
		return false, err
	}

	return true, nil
}
