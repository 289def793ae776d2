// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"fmt"
	"testing"
	"time"
)

// fakeClock lets tests control the cache's notion of now.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(capacity int) (*SignedURLCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewSignedURLCache(capacity)
	c.now = clock.now
	return c, clock
}

func TestSignedURLCacheHit(t *testing.T) {
	c, _ := newTestCache(10)

	c.Put("images/abc.webp", "https://s3.local/signed-abc", time.Hour)

	url, ok := c.Get("images/abc.webp")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if url != "https://s3.local/signed-abc" {
		t.Errorf("url = %q", url)
	}
}

func TestSignedURLCacheMiss(t *testing.T) {
	c, _ := newTestCache(10)
	if _, ok := c.Get("never-stored"); ok {
		t.Error("expected miss for absent key")
	}
}

// TestSignedURLCacheRefreshMargin verifies that an entry stops being
// served a margin before its real expiry, not at it.
func TestSignedURLCacheRefreshMargin(t *testing.T) {
	c, clock := newTestCache(10)

	c.Put("k", "https://s3.local/signed", time.Hour)

	// 54 minutes in: 6 minutes of validity left, outside the 5 minute
	// margin, still served.
	clock.advance(54 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry with margin to spare must still be served")
	}

	// 56 minutes in: only 4 minutes left, inside the margin.
	clock.advance(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("entry inside the refresh margin must be a miss")
	}

	// The stale entry was dropped on read.
	if c.Len() != 0 {
		t.Errorf("stale entry retained, len = %d", c.Len())
	}
}

func TestSignedURLCacheExpired(t *testing.T) {
	c, clock := newTestCache(10)

	c.Put("k", "url", time.Hour)
	clock.advance(2 * time.Hour)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry must be a miss")
	}
}

func TestSignedURLCacheCapacityEviction(t *testing.T) {
	c, _ := newTestCache(3)

	// Entries with staggered TTLs; the shortest-lived goes first.
	c.Put("short", "u1", 10*time.Minute)
	c.Put("medium", "u2", 30*time.Minute)
	c.Put("long", "u3", time.Hour)

	c.Put("newcomer", "u4", time.Hour)

	if c.Len() != 3 {
		t.Fatalf("len = %d, want capacity 3", c.Len())
	}
	if _, ok := c.Get("short"); ok {
		t.Error("soonest-expiring entry must be evicted on overflow")
	}
	for _, k := range []string{"medium", "long", "newcomer"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("entry %q missing after eviction", k)
		}
	}
}

func TestSignedURLCacheOverwriteDoesNotEvict(t *testing.T) {
	c, _ := newTestCache(2)

	c.Put("a", "u1", time.Hour)
	c.Put("b", "u2", time.Hour)

	// Re-putting an existing key must not push anything out.
	c.Put("a", "u1-refreshed", 2*time.Hour)

	if c.Len() != 2 {
		t.Errorf("len = %d, want 2", c.Len())
	}
	url, ok := c.Get("a")
	if !ok || url != "u1-refreshed" {
		t.Errorf("got %q, %v; want refreshed url", url, ok)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b evicted by an overwrite")
	}
}

func TestSignedURLCacheRemove(t *testing.T) {
	c, _ := newTestCache(10)

	c.Put("gone", "url", time.Hour)
	c.Remove("gone")

	if _, ok := c.Get("gone"); ok {
		t.Error("removed entry still served")
	}
	// Removing an absent key is a no-op.
	c.Remove("never-there")
}

func TestSignedURLCacheDefaultCapacity(t *testing.T) {
	c := NewSignedURLCache(0)
	if c.capacity != DefaultSignedURLCapacity {
		t.Errorf("capacity = %d, want default %d", c.capacity, DefaultSignedURLCapacity)
	}
}

func TestSignedURLCacheConcurrentAccess(t *testing.T) {
	c := NewSignedURLCache(64)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", n, j%16)
				c.Put(key, "url", time.Hour)
				c.Get(key)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
