package inventory

import (
	"context"
	"time"

	dominv "github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/Zhima-Mochi/minimarket/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	workerService        = "inventory_worker"
	useCaseStockWatch    = "inventory.worker.stock_adjusted"
	DefaultLowStockLevel = 5
)

// Worker watches committed stock movements and reports products that run low or out.
type Worker struct {
	subscriber domoutbox.Subscriber
	tel        observability.Observability
	lowStock   int

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewWorker(subscriber domoutbox.Subscriber, lowStock int, tel observability.Observability) *Worker {
	if lowStock < 0 {
		lowStock = DefaultLowStockLevel
	}
	metrics := observability.MetricsOf(tel)
	return &Worker{
		subscriber:   subscriber,
		tel:          tel,
		lowStock:     lowStock,
		log:          observability.LoggerOf(tel).With(observability.F("service", workerService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(dominv.StockAdjustedEvent{}.EventName(), w.handleStockAdjusted)
}

// level classifies remaining stock as "ok", "low" or "depleted".
func (w *Worker) level(remaining int) string {
	switch {
	case remaining <= 0:
		return "depleted"
	case remaining <= w.lowStock:
		return "low"
	default:
		return "ok"
	}
}

func (w *Worker) handleStockAdjusted(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(dominv.StockAdjustedEvent)
	if !ok {
		w.count("ignored")
		return nil
	}

	ctx, span := observability.TracerOf(w.tel).Start(ctx, "Worker.StockAdjusted",
		attribute.String("use_case", useCaseStockWatch),
		attribute.String("event", e.EventName()),
		attribute.String("product.id", evt.ProductID),
	)
	start := time.Now()
	level := w.level(evt.Remaining)

	logger := logctx.FromOr(ctx, w.log).With(
		observability.F("use_case", useCaseStockWatch),
		observability.F("product_id", evt.ProductID),
	)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With(
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}

	defer func() {
		w.observe("success", time.Since(start).Seconds())
		span.SetAttributes(attribute.String("inventory.level", level))
		span.SetStatus(codes.Ok, "OK")
		span.End()
	}()

	switch level {
	case "depleted":
		logger.Warn("stock_depleted", observability.F("kind", evt.Kind), observability.F("delta", evt.Delta))
	case "low":
		logger.Info("stock_low",
			observability.F("remaining", evt.Remaining),
			observability.F("threshold", w.lowStock),
		)
	}
	return nil
}

func (w *Worker) count(outcome string) {
	w.reqCounter.Add(1,
		observability.L("use_case", useCaseStockWatch),
		observability.L("outcome", outcome),
	)
}

func (w *Worker) observe(outcome string, latencySeconds float64) {
	w.count(outcome)
	w.durHistogram.Observe(latencySeconds, observability.L("use_case", useCaseStockWatch))
}
