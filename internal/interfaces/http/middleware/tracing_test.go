package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func attrValue(attrs []attribute.KeyValue, key string) (string, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestTracing(t *testing.T) {
	t.Run("disabled does not record spans", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := gin.New()
		router.Use(Tracing(TracingConfig{Enabled: false, ServiceName: "dropship-test"}))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Empty(t, sr.Ended())
	})

	t.Run("records route span with request id and subject", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := gin.New()
		router.Use(
			RequestID(),
			Tracing(TracingConfig{Enabled: true, ServiceName: "dropship-test"}),
			func(c *gin.Context) {
				c.Set(JWTSubjectKey, "ops@example.com")
				c.Next()
			},
			SpanAttributes(),
		)
		router.GET("/suppliers/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/suppliers/42", nil)
		req.Header.Set(RequestIDHeader, "req-7")
		router.ServeHTTP(httptest.NewRecorder(), req)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Contains(t, spans[0].Name(), "/suppliers/:id")

		id, ok := attrValue(spans[0].Attributes(), "request_id")
		require.True(t, ok)
		assert.Equal(t, "req-7", id)
		subject, ok := attrValue(spans[0].Attributes(), "enduser.id")
		require.True(t, ok)
		assert.Equal(t, "ops@example.com", subject)
	})

	t.Run("health probes are not traced", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := gin.New()
		router.Use(Tracing(DefaultTracingConfig()))
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Empty(t, sr.Ended())
	})
}
