package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no ended span named %q", name)
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) string {
	for _, attr := range span.Attributes() {
		if attr.Key == key {
			return attr.Value.AsString()
		}
	}
	return ""
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	w := httptest.NewRecorder()
	okRouter(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "test"})).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	shopID := uuid.New()

	router := gin.New()
	router.Use(RequestID(), TracingWithConfig(DefaultTracingConfig()))
	router.Use(ShopContext(DefaultShopConfig(nil)), TracingAttributeInjector())
	router.GET("/api/v1/sales/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/abc", nil)
	req.Header.Set(RequestIDHeader, "till-7-0001")
	req.Header.Set(ShopHeaderKey, shopID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	span := findSpan(t, sr, "GET /api/v1/sales/:id")
	assert.Equal(t, "till-7-0001", spanAttr(span, "request_id"))
	assert.Equal(t, shopID.String(), spanAttr(span, "shop_id"))
}

func TestTracing_UntrustedShopHeaderIgnored(t *testing.T) {
	sr := setupTestTracer(t)

	router := okRouter(TracingWithConfig(DefaultTracingConfig()), TracingAttributeInjector())
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(ShopHeaderKey, "<script>")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Empty(t, spanAttr(findSpan(t, sr, "GET /test"), "shop_id"))
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status      int
		description string
	}{
		{http.StatusNotFound, "Not Found"},
		{http.StatusUnauthorized, "Unauthorized"},
		{http.StatusUnprocessableEntity, "Business Rule Violation"},
		{http.StatusBadRequest, "Client Error"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := setupTestTracer(t)
			router := gin.New()
			router.Use(TracingWithConfig(DefaultTracingConfig()), SpanErrorMarker())
			router.GET("/test", func(c *gin.Context) {
				c.Status(tt.status)
			})
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

			span := findSpan(t, sr, "GET /test")
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tt.description, span.Status().Description)
		})
	}

	t.Run("success leaves status unset", func(t *testing.T) {
		sr := setupTestTracer(t)
		router := okRouter(TracingWithConfig(DefaultTracingConfig()), SpanErrorMarker())
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, codes.Unset, findSpan(t, sr, "GET /test").Status().Code)
	})
}
