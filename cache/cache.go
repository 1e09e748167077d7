// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/matryer/try"

	"github.com/encuestape/encuestape/models"
)

const keyPrefix = "encuestape:resultados:"

// ResultsCache holds computed results per encuesta.
// The database stays authoritative; a miss always falls back to it.
type ResultsCache interface {
	Get(ctx context.Context, encuestaID string) (models.ResultadosData, bool)
	Set(ctx context.Context, encuestaID string, data models.ResultadosData)
	Invalidate(ctx context.Context, encuestaID string)
}

// Key returns the Redis key for an encuesta's results
func Key(encuestaID string) string {
	return keyPrefix + encuestaID
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(context.Context, string) (models.ResultadosData, bool) {
	return models.ResultadosData{}, false
}

func (Noop) Set(context.Context, string, models.ResultadosData) {}

func (Noop) Invalidate(context.Context, string) {}

var _ ResultsCache = (*RedisCache)(nil)

// RedisCache stores JSON-encoded results with a TTL
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing client
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and pings the server, retrying a few times
func Connect(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	err = try.Do(func(attempt int) (bool, error) {
		err := client.Ping(ctx).Err()
		if err != nil && attempt < 3 {
			slog.Warn("redis ping failed, retrying", "attempt", attempt, "error", err)
			time.Sleep(500 * time.Millisecond)
		}
		return attempt < 3, err
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisCache(client, ttl), nil
}

func (c *RedisCache) Get(ctx context.Context, encuestaID string) (models.ResultadosData, bool) {
	raw, err := c.client.Get(ctx, Key(encuestaID)).Bytes()
	if err == redis.Nil {
		return models.ResultadosData{}, false
	}
	if err != nil {
		slog.Warn("results cache get failed", "encuesta_id", encuestaID, "error", err)
		return models.ResultadosData{}, false
	}

	var data models.ResultadosData
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Warn("results cache entry corrupt", "encuesta_id", encuestaID, "error", err)
		return models.ResultadosData{}, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, encuestaID string, data models.ResultadosData) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to encode results for cache", "encuesta_id", encuestaID, "error", err)
		return
	}
	if err := c.client.Set(ctx, Key(encuestaID), raw, c.ttl).Err(); err != nil {
		slog.Warn("results cache set failed", "encuesta_id", encuestaID, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, encuestaID string) {
	if err := c.client.Del(ctx, Key(encuestaID)).Err(); err != nil {
		slog.Warn("results cache invalidate failed", "encuesta_id", encuestaID, "error", err)
	}
}

// Close releases the underlying client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
