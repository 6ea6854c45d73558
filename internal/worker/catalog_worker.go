package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/config"
)

// Warmer rebuilds the cached catalog listings.
type Warmer interface {
	Warm(ctx context.Context) error
}

// CatalogWorker consumes catalog_refresh_queue and rewarms the listing cache.
// Signals that pile up while a rebuild runs are coalesced into one rebuild.
type CatalogWorker struct {
	rdb    *redis.Client
	warmer Warmer
	log    zerolog.Logger
}

// NewCatalogWorker creates a new CatalogWorker.
func NewCatalogWorker(rdb *redis.Client, warmer Warmer, log zerolog.Logger) *CatalogWorker {
	return &CatalogWorker{
		rdb:    rdb,
		warmer: warmer,
		log:    log.With().Str("component", "catalog_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *CatalogWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	// Serve warm listings from the first request on.
	w.warm(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *CatalogWorker) processNext(ctx context.Context) {
	// BLPop blocks until a signal arrives or the 1s timeout expires.
	_, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.CatalogRefreshQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			time.Sleep(time.Second)
		}
		return
	}

	if n, err := w.drainSignals(ctx); err != nil {
		w.log.Warn().Err(err).Msg("Drain refresh queue failed")
	} else if n > 0 {
		w.log.Debug().Int64("coalesced", n).Msg("Coalesced refresh signals")
	}

	w.warm(ctx)
}

// drainSignals removes pending signals so one rebuild covers them all.
func (w *CatalogWorker) drainSignals(ctx context.Context) (int64, error) {
	pipe := w.rdb.TxPipeline()
	llen := pipe.LLen(ctx, config.WorkerKey.CatalogRefreshQueue)
	pipe.Del(ctx, config.WorkerKey.CatalogRefreshQueue)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return llen.Val(), nil
}

func (w *CatalogWorker) warm(ctx context.Context) {
	start := time.Now()
	if err := w.warmer.Warm(ctx); err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Catalog warm failed")
		}
		return
	}
	w.log.Debug().Dur("took", time.Since(start)).Msg("Catalog warmed")
}
