package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	shopIDKey    contextKey = "shop_id"
)

// WithContext stores the logger in ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request ID in ctx and returns an enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return ctx, logger.With(zap.String("request_id", requestID))
}

// WithShopID records the acting shop in ctx and returns an enriched logger
func WithShopID(ctx context.Context, logger *zap.Logger, shopID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, shopIDKey, shopID)
	return ctx, logger.With(zap.String("shop_id", shopID))
}

// GetRequestID returns the request ID in ctx, if any
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetShopID returns the shop ID in ctx, if any
func GetShopID(ctx context.Context) string {
	id, _ := ctx.Value(shopIDKey).(string)
	return id
}

// L returns the context logger enriched with trace, request and shop fields.
//
//	logger.L(ctx).Info("Stock adjusted", zap.Int("delta", d))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds the trace, request and shop fields found in ctx to l
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, 4)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetShopID(ctx); id != "" {
		fields = append(fields, zap.String("shop_id", id))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
