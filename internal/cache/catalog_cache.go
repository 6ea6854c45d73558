// Package cache keeps rendered public class listings in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/summercamp/camp-backend/internal/config"
	"github.com/summercamp/camp-backend/internal/model"
)

// CatalogCache stores class listings as JSON strings with a TTL and signals
// the catalog worker through a Redis list.
type CatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCatalogCache creates a new CatalogCache.
func NewCatalogCache(rdb *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{rdb: rdb, ttl: ttl}
}

// GetListing returns the cached listing. A missing key is a miss, not an error.
func (c *CatalogCache) GetListing(ctx context.Context, name string) ([]model.Class, bool, error) {
	data, err := c.rdb.Get(ctx, config.CacheKey.CatalogListingKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var classes []model.Class
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil, false, fmt.Errorf("decode listing %s: %w", name, err)
	}
	return classes, true, nil
}

// Generation returns the current invalidation generation. Read it before
// loading a listing from the store and hand it to StoreListing.
func (c *CatalogCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, config.CacheKey.CatalogGenerationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// StoreListing caches a listing for the configured TTL if no invalidation
// happened since gen was read. stored is false when the listing was stale.
func (c *CatalogCache) StoreListing(ctx context.Context, name string, gen int64, classes []model.Class) (bool, error) {
	if classes == nil {
		classes = []model.Class{}
	}
	data, err := json.Marshal(classes)
	if err != nil {
		return false, fmt.Errorf("encode listing %s: %w", name, err)
	}

	genKey := config.CacheKey.CatalogGenerationKey()
	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, config.CacheKey.CatalogListingKey(name), data, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate bumps the generation and deletes every cached listing, so
// listings loaded before the change can no longer be stored.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, config.CacheKey.CatalogGenerationKey()).Err(); err != nil {
		return err
	}

	var keys []string
	iter := c.rdb.Scan(ctx, 0, config.CacheKey.CatalogListingPattern(), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// RequestRefresh queues a rebuild of the listings.
func (c *CatalogCache) RequestRefresh(ctx context.Context) error {
	stamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return c.rdb.RPush(ctx, config.WorkerKey.CatalogRefreshQueue, stamp).Err()
}
