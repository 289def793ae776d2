// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed cache for serialized catalog
// responses. Category list and tree payloads are rebuilt from the flat
// table on every request, so the JSON is cached and dropped whenever a
// category write lands.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// catalogKeyPrefix is the Valkey key prefix for cached catalog payloads.
	catalogKeyPrefix = "catalog:"

	// DefaultCatalogTTL is how long a catalog payload stays cached.
	DefaultCatalogTTL = 5 * time.Minute
)

// CatalogCache manages serialized catalog response caching in Valkey.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a new catalog cache backed by the given Valkey client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// Get retrieves a cached payload. Returns nil, false on miss.
func (cc *CatalogCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := cc.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("catalog cache hit", "key", key)
	return val, true
}

// Set stores a serialized payload with the configured TTL.
func (cc *CatalogCache) Set(ctx context.Context, key string, payload []byte) {
	if err := cc.client.Set(ctx, catalogKeyPrefix+key, payload, cc.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached payload.
func (cc *CatalogCache) Invalidate(ctx context.Context, key string) {
	if err := cc.client.Del(ctx, catalogKeyPrefix+key).Err(); err != nil {
		slog.Warn("catalog cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("catalog cache invalidated", "key", key)
}

// InvalidateAll removes every cached catalog payload by scanning for the
// prefix. Called after any category write, since the flat list, the tree
// and the parent picker all derive from the same rows.
func (cc *CatalogCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := cc.client.Scan(ctx, cursor, catalogKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("catalog cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := cc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("catalog cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("catalog cache fully cleared", "deleted", deleted)
	}
}

// CategoryListKey is the cache key for the flat category list payload.
func CategoryListKey() string {
	return "categories:flat"
}

// CategoryTreeKey is the cache key for the nested category tree payload.
func CategoryTreeKey() string {
	return "categories:tree"
}
