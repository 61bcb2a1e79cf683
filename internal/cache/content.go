// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"time"
)

const contentKey = "content:document"

// ContentCache caches the serialized landing page document so public reads
// skip the disk on every request. A content save invalidates the entry.
type ContentCache struct {
	cache Cacher
	ttl   time.Duration
}

// NewContentCache wraps a Cacher for content document caching.
func NewContentCache(c Cacher, ttl time.Duration) *ContentCache {
	return &ContentCache{cache: c, ttl: ttl}
}

// Get returns the cached document, or nil and false on a miss.
func (c *ContentCache) Get(ctx context.Context) ([]byte, bool) {
	data, err := c.cache.Get(ctx, contentKey)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores the serialized document.
func (c *ContentCache) Set(ctx context.Context, data []byte) error {
	return c.cache.Set(ctx, contentKey, data, c.ttl)
}

// Invalidate drops the cached document.
func (c *ContentCache) Invalidate(ctx context.Context) error {
	err := c.cache.Delete(ctx, contentKey)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return err
	}
	return nil
}
