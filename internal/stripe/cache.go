// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package stripe

import "sync"

// Cache holds the client for the currently configured secret key. Keys
// change rarely (switching test/live mode or rotating a secret), so a
// single entry is enough; a key change drops the old client.
type Cache struct {
	mu     sync.Mutex
	key    string
	client *Client
	opts   []Option
}

// NewCache creates a cache applying the given options to every client it
// builds.
func NewCache(opts ...Option) *Cache {
	return &Cache{opts: opts}
}

// Get returns the client for secretKey, building one on first use or
// after a key change. An empty key yields nil.
func (c *Cache) Get(secretKey string) *Client {
	if secretKey == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil || c.key != secretKey {
		c.key = secretKey
		c.client = NewClient(secretKey, c.opts...)
	}
	return c.client
}
