// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"sync"

	"github.com/encuestape/encuestape/cache"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/models"
	"github.com/encuestape/encuestape/testutil"
)

var _ cache.ResultsCache = (*recordingCache)(nil)

// recordingCache is an in-memory results cache that remembers invalidations
type recordingCache struct {
	mu          sync.Mutex
	data        map[string]models.ResultadosData
	gets        int
	invalidated []string
}

func (c *recordingCache) Get(_ context.Context, id string) (models.ResultadosData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[id]
	return d, ok
}

func (c *recordingCache) Set(_ context.Context, id string, d models.ResultadosData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]models.ResultadosData)
	}
	c.data[id] = d
}

func (c *recordingCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
	c.invalidated = append(c.invalidated, id)
}

// adminHeaders returns headers carrying a valid admin token
func adminHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{"Authorization": "Bearer " + testutil.AdminToken(cfg)}
}
