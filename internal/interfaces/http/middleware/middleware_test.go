package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/turtacn/esg/internal/infrastructure/monitoring"
	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		fromCtx, _ := c.Request.Context().Value(constants.ContextKeyRequestID).(string)
		c.String(http.StatusOK, c.GetString(string(constants.ContextKeyRequestID))+"|"+fromCtx)
	})

	t.Run("propagates incoming header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(constants.HeaderRequestID, "req-123")
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(constants.HeaderRequestID))
		assert.Equal(t, "req-123|req-123", w.Body.String())
	})

	t.Run("generates when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		generated := w.Header().Get(constants.HeaderRequestID)
		assert.Len(t, generated, 36)
		assert.Equal(t, generated+"|"+generated, w.Body.String())
	})

	t.Run("replaces oversized header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(constants.HeaderRequestID, strings.Repeat("x", 200))
		router.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get(constants.HeaderRequestID), 36)
	})
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(logger.NewNoopLogger()))
	router.GET("/boom", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), `"internal_error"`)
}

func TestLogging_PassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(Logging(logger.NewNoopLogger()))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for path, want := range map[string]int{"/ok": http.StatusNoContent, "/fail": http.StatusBadGateway} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestObservability(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	router := gin.New()
	router.Use(Observability(provider.Tracer("test"), metrics))
	router.GET("/api/v1/tenants/:tenant_id", func(c *gin.Context) {
		fromCtx, _ := c.Request.Context().Value(constants.ContextKeyTraceID).(string)
		c.String(http.StatusOK, c.GetString(ContextKeyTraceID)+"|"+fromCtx)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tenants/t-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/tenants/:tenant_id", spans[0].Name())

	traceID := spans[0].SpanContext().TraceID().String()
	assert.Equal(t, traceID+"|"+traceID, w.Body.String())

	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/tenants/:tenant_id", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.HTTPRequests.WithLabelValues(http.MethodGet, "not_found", "404")))
}

func TestObservability_ContinuesIncomingTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(Observability(provider.Tracer("test"), nil))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	const parentTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("traceparent", "00-"+parentTraceID+"-00f067aa0ba902b7-01")

	otel.SetTextMapPropagator(propagation.TraceContext{})
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, parentTraceID, spans[0].SpanContext().TraceID().String())
}

func TestETag(t *testing.T) {
	calls := 0
	router := gin.New()
	router.GET("/scores", ETag(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"data":      gin.H{"overall": 43.3},
			"timestamp": time.Now().UnixNano(),
		})
	})
	router.GET("/missing", ETag(), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scores", nil))
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, "private, no-cache", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), `"overall":43.3`)

	req := httptest.NewRequest(http.MethodGet, "/scores", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, 2, calls)

	req = httptest.NewRequest(http.MethodGet, "/scores", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))
}
