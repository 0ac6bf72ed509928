package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/esg/internal/infrastructure/monitoring"
	"github.com/turtacn/esg/pkg/constants"
)

// ContextKeyTraceID is the gin context key holding the request's trace ID.
const ContextKeyTraceID = string(constants.ContextKeyTraceID)

// RequestObserver records per-request metrics.
type RequestObserver interface {
	ObserveRequest(method, path string, status int, duration time.Duration)
}

// Observability returns a Gin middleware that integrates Prometheus metrics and OpenTelemetry tracing.
// Incoming W3C trace context is continued. Metrics are labeled with the route template from
// c.FullPath() so label cardinality stays bounded.
// Observability 返回集成 Prometheus 指标与 OpenTelemetry 追踪的 Gin 中间件。
func Observability(tracer trace.Tracer, observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := monitoring.ExtractTraceContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+routeOf(c), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if traceID := monitoring.GetTraceID(ctx); traceID != "" {
			c.Set(ContextKeyTraceID, traceID)
			ctx = context.WithValue(ctx, constants.ContextKeyTraceID, traceID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		path := routeOf(c)
		status := c.Writer.Status()
		if observer != nil {
			observer.ObserveRequest(c.Request.Method, path, status, time.Since(start))
		}

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", path),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}

func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "not_found"
}
