package worker

import (
	"context"
	"log"

	"commerce-backend/internal/broker"
	"commerce-backend/internal/cache"
	"commerce-backend/internal/models"
)

// CacheInvalidationWorker drops cached order-query results whenever an
// order mutation event arrives, so instances other than the one that
// handled the write do not serve stale lists for a full TTL.
type CacheInvalidationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        *cache.Cache
}

// NewCacheInvalidationWorker creates a new cache invalidation worker
func NewCacheInvalidationWorker(consumer *broker.Consumer, queryCache *cache.Cache) *CacheInvalidationWorker {
	eventHandler := broker.NewEventHandler()

	w := &CacheInvalidationWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		cache:        queryCache,
	}

	eventHandler.OnOrderMutation(w.handleOrderMutation)
	return w
}

func (w *CacheInvalidationWorker) handleOrderMutation(ctx context.Context, event *models.BaseEvent) error {
	if err := w.cache.Invalidate(ctx, cache.KeyWeeklyOrders); err != nil {
		log.Printf("Failed to invalidate order query cache for event %s: %v", event.EventID, err)
	}
	return nil
}

// Start starts the worker
func (w *CacheInvalidationWorker) Start(ctx context.Context) error {
	log.Println("Starting cache invalidation worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CacheInvalidationWorker) Stop() error {
	log.Println("Stopping cache invalidation worker...")
	return w.consumer.Close()
}
