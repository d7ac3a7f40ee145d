package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/application"
	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	dominv "github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/uow"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/Zhima-Mochi/minimarket/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	inventoryService       = "inventory-service"
	useCaseInventoryAdjust = "inventory.adjust"
)

// AdjustStockInput is a seller's manual stock change. Quantity is the amount to add or
// remove, or the new absolute level for AdjustmentSet.
type AdjustStockInput struct {
	Actor     *auth.Identity
	ProductID string
	Kind      string
	Quantity  int
}

type AdjustStockUseCase struct {
	store     uow.Store
	publisher domoutbox.Publisher
	tracer    observability.Tracer

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	events       application.Instruments
}

func NewAdjustStockUseCase(store uow.Store, publisher domoutbox.Publisher, tel observability.Observability) *AdjustStockUseCase {
	metrics := observability.MetricsOf(tel)
	return &AdjustStockUseCase{
		store:        store,
		publisher:    publisher,
		tracer:       observability.TracerOf(tel),
		log:          observability.LoggerOf(tel).With(observability.F("service", inventoryService)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		events:       application.NewInstruments(tel, inventoryService),
	}
}

// Execute applies the adjustment atomically and returns the product with its new stock.
// Removing more than is on hand fails with an InsufficientStockError and changes nothing.
func (uc *AdjustStockUseCase) Execute(ctx context.Context, in AdjustStockInput) (_ *product.Product, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseInventoryAdjust),
		observability.F("product_id", in.ProductID),
		observability.F("kind", in.Kind),
		observability.F("quantity", in.Quantity),
	)

	ctx, span := uc.tracer.Start(ctx, application.SpanPrefix+"AdjustStock",
		attribute.String("use_case", useCaseInventoryAdjust),
		attribute.String("product.id", in.ProductID),
		attribute.String("inventory.kind", in.Kind),
		attribute.Int("inventory.quantity", in.Quantity),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var (
		remaining  int
		publishErr error
	)

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		latency := time.Since(start).Seconds()
		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseInventoryAdjust),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(latency, observability.L("use_case", useCaseInventoryAdjust))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
		}
		if err == nil {
			fields = append(fields, observability.F("remaining", remaining))
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if err := auth.Require(in.Actor, user.RoleSeller, user.RoleAdmin); err != nil {
		outcome, statusText = "error", "FORBIDDEN"
		return nil, err
	}
	if strings.TrimSpace(in.ProductID) == "" {
		outcome, statusText = "error", "PRODUCT_ID_REQUIRED"
		return nil, apperr.Validation("product id is required")
	}

	var (
		delta int
		p     *product.Product
	)
	txErr := uc.store.WithinTx(ctx, func(ctx context.Context, tx uow.Repositories) error {
		var err error
		switch in.Kind {
		case dominv.AdjustmentAdd:
			if remaining, err = tx.Ledger.Increment(ctx, in.ProductID, in.Quantity); err != nil {
				return err
			}
			delta = in.Quantity
		case dominv.AdjustmentRemove:
			if remaining, err = tx.Ledger.Decrement(ctx, in.ProductID, in.Quantity); err != nil {
				return err
			}
			delta = -in.Quantity
		case dominv.AdjustmentSet:
			before, err := tx.Ledger.Available(ctx, in.ProductID)
			if err != nil {
				return err
			}
			if err := tx.Ledger.Set(ctx, in.ProductID, in.Quantity); err != nil {
				return err
			}
			remaining, delta = in.Quantity, in.Quantity-before
		default:
			return apperr.Validation(fmt.Sprintf("unknown stock adjustment %q", in.Kind))
		}
		p, err = tx.Products.Get(ctx, in.ProductID)
		return err
	})
	if txErr != nil {
		outcome, statusText = "error", "ADJUST_FAILED"
		return nil, application.WrapRepositoryError(txErr)
	}

	span.AddEvent("inventory.stock_adjusted", trace.WithAttributes(attribute.Int("inventory.remaining", remaining)))
	if perr := uc.events.Publish(ctx, uc.publisher, dominv.NewStockAdjustedEvent(in.ProductID, in.Kind, delta, remaining)); perr != nil {
		publishErr = perr
		statusText = "EVENT_PUBLISH_FAILED"
	}
	return p, nil
}
