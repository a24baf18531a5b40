package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const searchKeyPrefix = "search:result:"

// SearchCache is a best-effort cache for search responses. Every failure is
// treated as a miss so the cache can never break a search; it only trims
// load off the search engine for repeated queries.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSearchCache creates a new SearchCache
func NewSearchCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SearchCache {
	return &SearchCache{client: client, ttl: ttl, logger: logger.Named("search-cache")}
}

// Key derives a cache key from the normalized request parameters. Any
// JSON-serializable value works; identical parameters yield identical keys.
func (c *SearchCache) Key(params any) string {
	payload, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return searchKeyPrefix + hex.EncodeToString(sum[:])
}

// Get loads a cached response into dest. Returns false on miss or on any
// cache failure.
func (c *SearchCache) Get(ctx context.Context, key string, dest any) bool {
	if key == "" {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Warn("cache entry decode failed", zap.Error(err))
		return false
	}
	return true
}

// Set stores a response under key for the configured TTL. Failures are
// logged and swallowed.
func (c *SearchCache) Set(ctx context.Context, key string, value any) {
	if key == "" {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache entry encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.Error(err))
	}
}
