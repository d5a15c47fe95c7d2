package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrCacheMiss means no usable entry is stored for a key.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry means the stored value could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Manager keeps marketplace responses in Redis so GETs can be revalidated
// with If-None-Match / If-Modified-Since instead of refetched.
type Manager struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewManager panics on a nil client.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis:  redisClient,
		logger: log.With().Str("component", "marketplace-cache").Logger(),
	}
}

// Get returns the entry stored under key. Expired entries are evicted and
// reported as ErrCacheMiss.
func (m *Manager) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	redisKey := key.String()

	raw, err := m.redis.Get(ctx, redisKey).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		CacheMisses.Inc()
		m.logger.Debug().Str("key", redisKey).Msg("Cache miss")
		return nil, ErrCacheMiss
	case err != nil:
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get %s: %w", redisKey, err)
	}

	entry, err := decodeEntry(raw)
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%s: %w", redisKey, err)
	}

	if entry.IsExpired() {
		CacheMisses.Inc()
		if err := m.Delete(ctx, key); err != nil {
			m.logger.Warn().Err(err).Str("key", redisKey).Msg("Failed to evict expired entry")
		}
		m.logger.Debug().Str("key", redisKey).Time("expired", entry.Expires).Msg("Cache entry expired")
		return nil, ErrCacheMiss
	}

	CacheHits.Inc()
	m.logger.Debug().
		Str("key", redisKey).
		Str("etag", entry.ETag).
		Dur("age", time.Since(entry.CachedAt)).
		Msg("Cache hit")

	return entry, nil
}

// Set stores entry until its Expires time. An entry that has already expired
// is not written.
func (m *Manager) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	redisKey := key.String()
	ttl := entry.TTL()
	if ttl <= 0 {
		m.logger.Debug().Str("key", redisKey).Msg("Skipping expired response")
		return nil
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("encode entry %s: %w", redisKey, err)
	}

	if err := m.redis.Set(ctx, redisKey, raw, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set %s: %w", redisKey, err)
	}

	CacheWrittenBytes.Add(float64(len(raw)))
	m.logger.Debug().
		Str("key", redisKey).
		Int("bytes", len(raw)).
		Dur("ttl", ttl).
		Msg("Cache entry stored")

	return nil
}

// Delete removes the entry stored under key.
func (m *Manager) Delete(ctx context.Context, key CacheKey) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// UpdateTTL extends an entry after a 304 that carried a fresh Expires header.
func (m *Manager) UpdateTTL(ctx context.Context, key CacheKey, newExpires time.Time) error {
	entry, err := m.Get(ctx, key)
	if err != nil {
		return err
	}

	entry.Expires = newExpires
	return m.Set(ctx, key, entry)
}

// Ping checks the Redis connection; the dashboard's readiness probe uses it.
func (m *Manager) Ping(ctx context.Context) error {
	return m.redis.Ping(ctx).Err()
}

func decodeEntry(raw []byte) (*CacheEntry, error) {
	var entry CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return &entry, nil
}
