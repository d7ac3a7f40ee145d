package workerpresentation

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/Zhima-Mochi/minimarket/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext gives each event handler a logger carrying event_id, the event name,
// the trace identifiers of the publishing span (when valid) and any fixed attrs.
// Keep attrs low-cardinality: worker name, queue, shard.
func WithEventContext(tel observability.Observability, attrs map[string]string) domoutbox.Middleware {
	base := observability.LoggerOf(tel)
	return func(next domoutbox.Handler) domoutbox.Handler {
		return func(ctx context.Context, e domoutbox.Event) error {
			return next(EventContext(ctx, base, e, attrs), e)
		}
	}
}

// EventContext returns ctx with a logger scoped to one delivery of e.
// A logger already on ctx is preferred over base.
func EventContext(ctx context.Context, base observability.Logger, e domoutbox.Event, attrs map[string]string) context.Context {
	fields := make([]observability.Field, 0, 4+len(attrs))
	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", evtID))
	if e != nil {
		fields = append(fields, observability.F("event", e.EventName()))
	}

	sc := trace.SpanContextFromContext(ctx)
	if sc.TraceID().IsValid() {
		fields = append(fields, observability.F("trace_id", sc.TraceID().String()))
	}
	if sc.SpanID().IsValid() {
		fields = append(fields, observability.F("span_id", sc.SpanID().String()))
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}
	return logctx.Enrich(ctx, base, fields...)
}
