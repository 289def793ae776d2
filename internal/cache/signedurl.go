// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// signedurl.go caches presigned object URLs in memory. Signing is a local
// HMAC computation but the result is requested for the same keys on every
// catalog page, so completed URLs are kept until shortly before they stop
// working. Entries are treated as expired a refresh margin ahead of their
// real deadline so a URL handed out is never on the edge of expiry.
package cache

import (
	"sync"
	"time"
)

const (
	// DefaultSignedURLCapacity bounds how many URLs are kept.
	DefaultSignedURLCapacity = 1024

	// signedURLMargin is how long before real expiry an entry is
	// considered stale.
	signedURLMargin = 5 * time.Minute
)

type signedEntry struct {
	url       string
	expiresAt time.Time
}

// SignedURLCache is a size-capped in-memory cache of presigned URLs,
// keyed by object key. Safe for concurrent use.
type SignedURLCache struct {
	mu       sync.Mutex
	entries  map[string]signedEntry
	capacity int
	margin   time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewSignedURLCache creates a cache holding at most capacity entries.
// A capacity of 0 or less uses DefaultSignedURLCapacity.
func NewSignedURLCache(capacity int) *SignedURLCache {
	if capacity <= 0 {
		capacity = DefaultSignedURLCapacity
	}
	return &SignedURLCache{
		entries:  make(map[string]signedEntry),
		capacity: capacity,
		margin:   signedURLMargin,
		now:      time.Now,
	}
}

// Get returns the cached URL for key, or "", false if absent or within
// the refresh margin of expiring.
func (c *SignedURLCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !c.now().Add(c.margin).Before(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.url, true
}

// Put stores a URL valid for ttl from now. If the cache is full, the
// entry closest to expiry is evicted first.
func (c *SignedURLCache) Put(key, url string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictSoonest()
	}
	c.entries[key] = signedEntry{url: url, expiresAt: c.now().Add(ttl)}
}

// Remove drops a single entry, if present. Called when the underlying
// object is deleted.
func (c *SignedURLCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports how many entries are currently held, expired or not.
func (c *SignedURLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictSoonest removes the entry with the earliest expiry. Caller holds
// the lock.
func (c *SignedURLCache) evictSoonest() {
	var victim string
	var soonest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.expiresAt.Before(soonest) {
			victim = k
			soonest = e.expiresAt
			first = false
		}
	}
	if !first {
		delete(c.entries, victim)
	}
}
