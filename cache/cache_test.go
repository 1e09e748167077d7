// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encuestape/encuestape/models"
)

func unreachableRedis() *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewRedisCache(client, time.Minute)
}

func newMiniRedis(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: srv.Addr()}), ttl)
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestKey(t *testing.T) {
	assert.Equal(t, "encuestape:resultados:abc123", Key("abc123"))
}

func TestNoop(t *testing.T) {
	var c ResultsCache = Noop{}
	ctx := context.Background()

	c.Set(ctx, "enc", models.ResultadosData{EncuestaID: "enc", TotalVotos: 3})
	_, ok := c.Get(ctx, "enc")
	assert.False(t, ok, "noop cache should never hit")
	c.Invalidate(ctx, "enc")
}

func TestRedisCache_ErrorsAreMisses(t *testing.T) {
	c := unreachableRedis()
	defer c.Close()
	ctx := context.Background()

	// None of these may panic or block; failures are logged and swallowed
	c.Set(ctx, "enc", models.ResultadosData{EncuestaID: "enc"})
	_, ok := c.Get(ctx, "enc")
	assert.False(t, ok)
	c.Invalidate(ctx, "enc")
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "not a url", time.Minute)
	assert.Error(t, err)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, srv := newMiniRedis(t, 30*time.Second)
	ctx := context.Background()

	data := models.ResultadosData{
		EncuestaID: "enc1",
		TotalVotos: 3,
		Resultados: []models.ResultadoOpcion{
			{Opcion: "Sí", Cantidad: 2, Porcentaje: "66.7"},
			{Opcion: "No", Cantidad: 1, Porcentaje: "33.3"},
		},
		UltimaActualizacion: time.Date(2026, 4, 12, 8, 30, 0, 0, time.UTC),
	}

	_, ok := c.Get(ctx, "enc1")
	assert.False(t, ok, "empty cache should miss")

	c.Set(ctx, "enc1", data)
	require.True(t, srv.Exists(Key("enc1")))
	assert.Equal(t, 30*time.Second, srv.TTL(Key("enc1")))

	raw, err := srv.Get(Key("enc1"))
	require.NoError(t, err)
	assert.Contains(t, raw, `"porcentaje":"66.7"`)

	got, ok := c.Get(ctx, "enc1")
	require.True(t, ok)
	assert.Equal(t, data, got)

	c.Invalidate(ctx, "enc1")
	assert.False(t, srv.Exists(Key("enc1")))
	_, ok = c.Get(ctx, "enc1")
	assert.False(t, ok)
}

func TestRedisCache_ExpiredEntryMisses(t *testing.T) {
	c, srv := newMiniRedis(t, time.Second)
	ctx := context.Background()

	c.Set(ctx, "enc1", models.ResultadosData{EncuestaID: "enc1", TotalVotos: 1})
	srv.FastForward(2 * time.Second)

	_, ok := c.Get(ctx, "enc1")
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntryMisses(t *testing.T) {
	c, srv := newMiniRedis(t, time.Minute)

	require.NoError(t, srv.Set(Key("enc1"), "{not json"))
	_, ok := c.Get(context.Background(), "enc1")
	assert.False(t, ok)
}

func TestConnect(t *testing.T) {
	srv := miniredis.RunT(t)

	c, err := Connect(context.Background(), "redis://"+srv.Addr()+"/0", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	c.Set(context.Background(), "enc1", models.ResultadosData{EncuestaID: "enc1"})
	assert.True(t, srv.Exists(Key("enc1")))
}
