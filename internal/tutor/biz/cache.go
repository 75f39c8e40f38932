package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	"github.com/redis/go-redis/v9"

	"github.com/redfire-io/pcb-tutor/internal/model"
)

// QueryCache caches generated question sets in Redis. The key covers the
// subject, topic, question count and a hash of the retrieved context, so a
// re-index that changes retrieval results also changes the key.
type QueryCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// NewQueryCache creates a QueryCache on an established Redis client.
func NewQueryCache(client *redis.Client, ttl time.Duration, keyPrefix string) *QueryCache {
	if keyPrefix == "" {
		keyPrefix = "mcq:"
	}
	return &QueryCache{client: client, ttl: ttl, keyPrefix: keyPrefix}
}

// Key builds the cache key for one generation request.
func (c *QueryCache) Key(subject model.Subject, topic, contextHash string, count int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", subject, topic, contextHash, count)))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached result for key, or nil on a miss.
func (c *QueryCache) Get(ctx context.Context, key string) (*model.GenerateResult, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var result model.GenerateResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Corrupted entry: drop it and treat as a miss.
		logger.Warnw("Dropping corrupted cache entry", "key", key, "error", err.Error())
		_ = c.client.Del(ctx, key).Err()
		return nil, nil
	}
	return &result, nil
}

// Set stores a result under key with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, key string, result *model.GenerateResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Clear removes every key in the cache namespace.
func (c *QueryCache) Clear(ctx context.Context) (int64, error) {
	var deleted int64
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("cache scan: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			deleted += n
			if err != nil {
				return deleted, fmt.Errorf("cache delete: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// Size returns the number of cached entries.
func (c *QueryCache) Size(ctx context.Context) (int64, error) {
	var count int64
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("cache scan: %w", err)
		}
		count += int64(len(keys))
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

// Ping checks connectivity to the cache backend.
func (c *QueryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
