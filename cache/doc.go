// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache keeps computed poll results in Redis between refreshes.

	rc, err := cache.Connect(ctx, cfg.RedisURL, cfg.ResultsCacheTTL)

Entries are JSON under encuestape:resultados:<encuesta_id>. A vote
invalidates its encuesta's entry. Redis failures are logged and treated
as misses, so the service keeps working without Redis. Noop is used when
no REDIS_URL is configured.
*/
package cache
