package catalog

import (
	"context"

	"github.com/Zhima-Mochi/minimarket/internal/application"
	dominv "github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	workerService     = "catalog-worker"
	useCaseInvalidate = "catalog.worker.invalidate"
)

// Worker drops cached products whenever their stock or details change.
type Worker struct {
	subscriber domoutbox.Subscriber
	cache      ProductCache
	obs        application.Instruments
}

func NewWorker(subscriber domoutbox.Subscriber, cache ProductCache, tel observability.Observability) *Worker {
	return &Worker{
		subscriber: subscriber,
		cache:      cache,
		obs:        application.NewInstruments(tel, workerService),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.cache == nil {
		return
	}
	w.subscriber.Subscribe(product.ChangedEvent{}.EventName(), w.invalidate)
	w.subscriber.Subscribe(dominv.StockAdjustedEvent{}.EventName(), w.invalidate)
}

func (w *Worker) invalidate(ctx context.Context, e domoutbox.Event) (err error) {
	var id string
	switch evt := e.(type) {
	case product.ChangedEvent:
		id = evt.ProductID
	case dominv.StockAdjustedEvent:
		id = evt.ProductID
	default:
		return nil
	}

	ctx, exec := w.obs.Start(ctx, useCaseInvalidate, "InvalidateProduct",
		attribute.String("event", e.EventName()),
		attribute.String("product.id", id),
	)
	defer func() { exec.End(ctx, err) }()
	exec.Field("event", e.EventName())
	exec.Field("product_id", id)

	return w.cache.Delete(ctx, id)
}
