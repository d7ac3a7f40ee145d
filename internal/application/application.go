package application

import (
	"context"
	"errors"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/Zhima-Mochi/minimarket/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

const (
	SpanPrefix     = "UC."
	PublishPeer    = "outbox"
	PublishTimeout = 300 * time.Millisecond
)

// WrapRepositoryError keeps classified domain errors and marks anything else as a persistence failure.
func WrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if apperr.Classified(err) {
		return err
	}
	return apperr.Persistence(err)
}

// Instruments bundles the RED metrics and base logger a service reports through.
type Instruments struct {
	tel          observability.Observability
	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewInstruments(tel observability.Observability, service string) Instruments {
	m := observability.MetricsOf(tel)
	return Instruments{
		tel:          tel,
		log:          observability.LoggerOf(tel).With(observability.F("service", service)),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

func (in Instruments) Logger() observability.Logger { return in.log }

// Execution is one observed run of a use case. End must be deferred right after Start.
type Execution struct {
	in      Instruments
	useCase string
	span    trace.Span
	logger  observability.Logger
	start   time.Time
	outcome string
	status  string
	fields  []observability.Field
}

func (in Instruments) Start(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Execution) {
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := observability.TracerOf(in.tel).Start(ctx, SpanPrefix+spanName, attrs...)
	logger := logctx.FromOr(ctx, in.log).With(observability.F("use_case", useCase))
	return ctx, &Execution{
		in:      in,
		useCase: useCase,
		span:    span,
		logger:  logger,
		start:   time.Now(),
		outcome: "success",
		status:  "OK",
	}
}

func (e *Execution) Span() trace.Span             { return e.span }
func (e *Execution) Logger() observability.Logger { return e.logger }

// Fail marks the run as failed with a machine-readable status.
func (e *Execution) Fail(status string) {
	e.outcome, e.status = "error", status
}

// Status overrides the status text without changing the outcome.
func (e *Execution) Status(status string) { e.status = status }

func (e *Execution) Field(k string, v any) {
	e.fields = append(e.fields, observability.F(k, v))
}

func (e *Execution) End(ctx context.Context, err error) {
	lat := time.Since(e.start).Seconds()
	if err != nil && e.outcome == "success" {
		e.outcome = "error"
		if e.status == "OK" {
			e.status = statusFor(err)
		}
	}

	if e.span != nil {
		if err != nil {
			e.span.RecordError(err)
			e.span.SetStatus(codes.Error, e.status)
		} else {
			e.span.SetStatus(codes.Ok, e.status)
		}
		e.span.End()
	}

	e.in.reqCounter.Add(1,
		observability.L("use_case", e.useCase),
		observability.L("outcome", e.outcome),
	)
	e.in.durHistogram.Observe(lat, observability.L("use_case", e.useCase))

	fields := append([]observability.Field{
		observability.F("outcome", e.outcome),
		observability.F("status", e.status),
		observability.F("latency_seconds", lat),
	}, e.fields...)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	e.logger.Info("use_case_done", fields...)
}

func statusFor(err error) string {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return "VALIDATION_FAILED"
	case errors.Is(err, apperr.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, apperr.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, apperr.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, apperr.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "CONTEXT_CANCELED"
	default:
		return "INTERNAL"
	}
}

// Publish sends e on publisher with a short timeout. A failure never fails the caller;
// it is returned so the caller can note it on the span and log line.
func (in Instruments) Publish(ctx context.Context, publisher domoutbox.Publisher, e domoutbox.Event) error {
	if publisher == nil || e == nil {
		return nil
	}
	pubCtx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	start := time.Now()
	outcome := "success"
	err := publisher.Publish(pubCtx, e)
	if err != nil {
		outcome = "error"
	} else if pubCtx.Err() != nil {
		outcome = "canceled"
		err = pubCtx.Err()
	}

	in.extCounter.Add(1,
		observability.L("peer", PublishPeer),
		observability.L("endpoint", e.EventName()),
		observability.L("outcome", outcome),
	)
	in.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", PublishPeer),
		observability.L("endpoint", e.EventName()),
	)
	if err != nil {
		logctx.FromOr(ctx, in.log).Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
	}
	return err
}
