package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/redis/go-redis/v9"
)

const productCacheVersionKey = "products:v"

// ProductCache caches catalog list pages in redis. Entries are keyed by a
// version counter so any catalog or price write drops every page at once.
// A nil cache or nil client turns every call into a miss.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func (c *ProductCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *ProductCache) key(ctx context.Context, query string) (string, error) {
	version, err := c.rdb.Get(ctx, productCacheVersionKey).Result()
	if err == redis.Nil {
		version = "0"
	} else if err != nil {
		return "", err
	}
	return "products:" + version + ":" + query, nil
}

// Get loads a cached page into dest and reports a hit
func (c *ProductCache) Get(ctx context.Context, query string, dest interface{}) bool {
	if !c.enabled() {
		return false
	}
	key, err := c.key(ctx, query)
	if err != nil {
		utils.LogWarn("Product cache unavailable: %v", err)
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.LogWarn("Product cache read failed: %v", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		utils.LogWarn("Product cache entry %s is corrupt: %v", key, err)
		return false
	}
	return true
}

// Set stores a page; failures are logged and ignored
func (c *ProductCache) Set(ctx context.Context, query string, value interface{}) {
	if !c.enabled() {
		return
	}
	key, err := c.key(ctx, query)
	if err != nil {
		utils.LogWarn("Product cache unavailable: %v", err)
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		utils.LogWarn("Product cache encode failed: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		utils.LogWarn("Product cache write failed: %v", err)
	}
}

// Invalidate bumps the version so older pages expire unread
func (c *ProductCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, productCacheVersionKey).Err(); err != nil {
		utils.LogWarn("Product cache invalidation failed: %v", err)
	}
}
