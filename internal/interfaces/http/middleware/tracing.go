package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds client supplied request IDs
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "duka-backend",
		Enabled:     true,
	}
}

// TracingWithConfig returns the otelgin middleware. Span names follow
// "METHOD route", e.g. "GET /api/v1/sales/:id".
// Place TracingAttributeInjector after the shop middleware to tag spans.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector adds request_id and shop_id to the current span.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := spanRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
			if shopID := spanShopID(c); shopID != "" {
				span.SetAttributes(attribute.String("shop_id", shopID))
			}
		}
		c.Next()
	}
}

func spanRequestID(c *gin.Context) string {
	if id := GetRequestID(c); id != "" {
		return id
	}
	headerID := c.GetHeader(RequestIDHeader)
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// spanShopID prefers the resolved shop. Raw headers are only trusted when
// they parse as a UUID, so arbitrary text never lands in trace data.
func spanShopID(c *gin.Context) string {
	if id := c.GetString(ShopIDKey); id != "" {
		return id
	}
	if id := GetJWTShopID(c); id != "" {
		return id
	}
	if id, err := uuid.Parse(c.GetHeader(ShopHeaderKey)); err == nil {
		return id.String()
	}
	return ""
}

// SpanErrorMarker marks the span as failed for 4xx and 5xx responses.
// Place it after TracingWithConfig.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}

		message := "Client Error"
		switch {
		case status >= http.StatusInternalServerError:
			message = "Internal Server Error"
		case status == http.StatusUnauthorized:
			message = "Unauthorized"
		case status == http.StatusNotFound:
			message = "Not Found"
		case status == http.StatusConflict:
			message = "Conflict"
		case status == http.StatusUnprocessableEntity:
			message = "Business Rule Violation"
		}
		span.SetStatus(codes.Error, message)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
