//go:build integration

package cache_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summercamp/camp-backend/internal/cache"
	"github.com/summercamp/camp-backend/internal/config"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/worker"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestCatalogCache(t *testing.T) {
	ctx := context.Background()
	rdb := newRedis(t)
	c := cache.NewCatalogCache(rdb, time.Minute)

	_, ok, err := c.GetListing(ctx, "approved")
	require.NoError(t, err)
	assert.False(t, ok)

	listing := []model.Class{{ID: uuid.New(), Name: "Pottery", Status: model.ClassStatusApproved, Price: 20}}
	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	for _, name := range []string{"approved", "popular"} {
		stored, err := c.StoreListing(ctx, name, gen, listing)
		require.NoError(t, err)
		require.True(t, stored, name)
	}

	got, ok, err := c.GetListing(ctx, "approved")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, listing[0].ID, got[0].ID)

	ttl, err := rdb.TTL(ctx, config.CacheKey.CatalogListingKey("approved")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.GetListing(ctx, "popular")
	require.NoError(t, err)
	assert.False(t, ok)

	// A listing read before the invalidation must not be written back.
	stored, err := c.StoreListing(ctx, "popular", gen, listing)
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, err = c.GetListing(ctx, "popular")
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)
	stored, err = c.StoreListing(ctx, "popular", next, listing)
	require.NoError(t, err)
	assert.True(t, stored)

	require.NoError(t, c.RequestRefresh(ctx))
	n, err := rdb.LLen(ctx, config.WorkerKey.CatalogRefreshQueue).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

type countingWarmer struct{ calls atomic.Int32 }

func (w *countingWarmer) Warm(context.Context) error {
	w.calls.Add(1)
	return nil
}

func TestCatalogWorkerCoalescesSignals(t *testing.T) {
	rdb := newRedis(t)
	c := cache.NewCatalogCache(rdb, time.Minute)
	warmer := &countingWarmer{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for range 5 {
		require.NoError(t, c.RequestRefresh(ctx))
	}

	done := make(chan struct{})
	go func() {
		worker.NewCatalogWorker(rdb, warmer, zerolog.Nop()).Start(ctx)
		close(done)
	}()

	// One warm at startup plus one for the whole burst.
	require.Eventually(t, func() bool { return warmer.calls.Load() == 2 }, 5*time.Second, 20*time.Millisecond)

	n, err := rdb.LLen(context.Background(), config.WorkerKey.CatalogRefreshQueue).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("worker did not stop")
	}
}
