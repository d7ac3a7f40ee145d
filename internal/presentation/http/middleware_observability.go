package httppresentation

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/Zhima-Mochi/minimarket/internal/observability/logctx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// routeOf returns the registered route template, keeping metric labels low-cardinality.
func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unknown"
}

// withTrace creates a server span for the request using OTel and W3C propagation.
func (h *Handler) withTrace() gin.HandlerFunc {
	tracer := otel.Tracer("minimarket.http")
	prop := otel.GetTextMapPropagator()

	return func(c *gin.Context) {
		r := c.Request
		parent := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		route := routeOf(c)
		name := r.Method + " " + route
		if route == "unknown" {
			name = r.Method + " " + r.URL.Path
		}

		ctx, span := tracer.Start(parent, name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		c.Request = r.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// withRequestLogger injects a request-scoped logger (dynamic fields only) and echoes X-Request-ID.
func (h *Handler) withRequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(headerRequestID, rid)

		fields := []observability.Field{observability.F("request_id", rid)}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		c.Request = c.Request.WithContext(logctx.With(ctx, h.log.With(fields...)))
		c.Next()
	}
}

// withHTTPMetrics records RED metrics on the vectors resolved in NewHandler.
func (h *Handler) withHTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		labels := []observability.Label{
			observability.L("method", c.Request.Method),
			observability.L("route", routeOf(c)),
			observability.L("status", strconv.Itoa(c.Writer.Status())),
		}
		h.httpRequests.Add(1, labels...)
		h.httpDuration.Observe(time.Since(start).Seconds(), labels...)
	}
}

// withAccessLog writes a single access log line after the handler completes.
func (h *Handler) withAccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logctx.FromOr(c.Request.Context(), h.log).Info("http_access",
			observability.F("method", c.Request.Method),
			observability.F("route", routeOf(c)),
			observability.F("path", c.Request.URL.Path),
			observability.F("status", c.Writer.Status()),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	}
}

func (h *Handler) withRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logctx.FromOr(c.Request.Context(), h.log).Error("http_panic",
			observability.F("route", routeOf(c)),
			observability.F("panic", fmt.Sprint(rec)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
