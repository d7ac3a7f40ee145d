// Package relay forwards committed domain events from the in-process bus to an external broker.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/review"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/Zhima-Mochi/minimarket/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Message is the broker-neutral form of an event.
type Message struct {
	Name string
	Key  string
	Body []byte
}

// Sink delivers messages to a broker.
type Sink interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

type envelope struct {
	Event     string          `json:"event"`
	RelayedAt time.Time       `json:"relayedAt"`
	Payload   domoutbox.Event `json:"payload"`
}

const (
	workerService  = "relay-worker"
	useCaseRelay   = "relay.forward"
	defaultRetries = 3
)

type Worker struct {
	subscriber domoutbox.Subscriber
	sink       Sink
	tel        observability.Observability
	retries    int
	backoff    time.Duration

	log          observability.Logger
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewWorker(subscriber domoutbox.Subscriber, sink Sink, tel observability.Observability) *Worker {
	m := observability.MetricsOf(tel)
	return &Worker{
		subscriber:   subscriber,
		sink:         sink,
		tel:          tel,
		retries:      defaultRetries,
		backoff:      200 * time.Millisecond,
		log:          observability.LoggerOf(tel).With(observability.F("service", workerService)),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.sink == nil {
		return
	}
	w.subscriber.Subscribe(domoutbox.AllEvents, w.forward)
}

// Encode wraps e in the JSON envelope sent to brokers.
func Encode(e domoutbox.Event) (Message, error) {
	body, err := json.Marshal(envelope{Event: e.EventName(), RelayedAt: time.Now().UTC(), Payload: e})
	if err != nil {
		return Message{}, fmt.Errorf("relay: encode %s: %w", e.EventName(), err)
	}
	return Message{Name: e.EventName(), Key: keyOf(e), Body: body}, nil
}

// keyOf picks the partition/routing key so events of one aggregate stay ordered.
func keyOf(e domoutbox.Event) string {
	switch evt := e.(type) {
	case order.OrderPlacedEvent:
		return evt.GroupID
	case order.ShippingStatusChangedEvent:
		return evt.GroupID
	case inventory.StockAdjustedEvent:
		return evt.ProductID
	case product.ChangedEvent:
		return evt.ProductID
	case review.CreatedEvent:
		return evt.OrderLineID
	default:
		return e.EventName()
	}
}

func (w *Worker) forward(ctx context.Context, e domoutbox.Event) (err error) {
	ctx, span := observability.TracerOf(w.tel).Start(ctx, "Relay."+e.EventName(),
		attribute.String("use_case", useCaseRelay),
		attribute.String("event", e.EventName()),
		attribute.String("sink", w.sink.Name()),
	)
	logger := logctx.FromOr(ctx, w.log).With(
		observability.F("use_case", useCaseRelay),
		observability.F("event", e.EventName()),
		observability.F("sink", w.sink.Name()),
	)
	start := time.Now()
	outcome := "success"
	attempts := 0

	defer func() {
		w.extCounter.Add(1,
			observability.L("peer", w.sink.Name()),
			observability.L("endpoint", e.EventName()),
			observability.L("outcome", outcome),
		)
		w.extHistogram.Observe(time.Since(start).Seconds(),
			observability.L("peer", w.sink.Name()),
			observability.L("endpoint", e.EventName()),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "RELAY_FAILED")
			logger.Error("event_relay_failed", observability.F("attempts", attempts), observability.F("error", err))
		} else {
			span.SetStatus(codes.Ok, "OK")
			logger.Debug("event_relayed", observability.F("attempts", attempts))
		}
		span.End()
	}()

	msg, err := Encode(e)
	if err != nil {
		outcome = "error"
		return err
	}

	for attempts = 1; ; attempts++ {
		err = w.sink.Send(ctx, msg)
		if err == nil {
			return nil
		}
		if attempts >= w.retries {
			outcome = "error"
			return fmt.Errorf("relay: %s after %d attempts: %w", w.sink.Name(), attempts, err)
		}
		select {
		case <-ctx.Done():
			outcome = "canceled"
			return ctx.Err()
		case <-time.After(w.backoff * time.Duration(attempts)):
		}
	}
}
