// Package cache revalidates marketplace GET responses through a Redis-backed
// store keyed by endpoint, query and Accept-Language.
//
// Entries are never served without asking the server first: the client sends
// If-None-Match / If-Modified-Since from the stored entry and only reuses the
// stored body when the marketplace answers 304 Not Modified.
//
//	manager := cache.NewManager(redisClient)
//	key := cache.CacheKey{Endpoint: "/categories/v1/open/categories", Language: "en"}
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// plain request
//	}
package cache

import (
	"net/http"
	"time"
)

// CacheEntry is a stored marketplace response.
type CacheEntry struct {
	Data         []byte      `json:"data"`
	ETag         string      `json:"etag"`
	Expires      time.Time   `json:"expires"`
	LastModified time.Time   `json:"last_modified"`
	StatusCode   int         `json:"status_code"`
	Headers      http.Header `json:"headers"`
	CachedAt     time.Time   `json:"cached_at"`
}

// IsExpired returns true if the cache entry has expired.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration, or 0 if already expired.
func (e *CacheEntry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
