package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	l, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, l)

	path := filepath.Join(t.TempDir(), "app.log")
	l, err = New(Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Sync())
	assert.FileExists(t, path)

	_, err = New(Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestContextHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.NotNil(t, FromContext(ctx))

	ctx = WithContext(ctx, base)
	ctx, _ = WithRequestID(ctx, base, "req-1")
	ctx, _ = WithShopID(ctx, base, "shop-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "shop-1", GetShopID(ctx))

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(ctx, "op")
	defer span.End()

	L(ctx).Info("enriched")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "shop-1", fields["shop_id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-9")
		c.Next()
	})
	r.Use(GinMiddleware(zap.New(core)), Recovery(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) {
		assert.Equal(t, "req-9", GetRequestID(c.Request.Context()))
		assert.NotNil(t, GetGinLogger(c))
		c.Set("shop_id", "shop-1")
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	for _, path := range []string{"/ok", "/missing", "/panic"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path+"?x=1", nil))
	}

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "shop-1", entries[0].ContextMap()["shop_id"])
	assert.Equal(t, "x=1", entries[0].ContextMap()["query"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, 50*time.Millisecond)
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), sql, nil)
	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	gl.Trace(ctx, time.Now(), sql, errors.New("connection reset"))
	gl.Trace(ctx, time.Now(), sql, gormlogger.ErrRecordNotFound)

	assert.Equal(t, 1, logs.FilterMessage("SQL query").Len())
	assert.Equal(t, 1, logs.FilterMessage("Slow SQL").Len())
	assert.Equal(t, 1, logs.FilterMessage("SQL error").Len())
	assert.Equal(t, 3, logs.Len())

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 3, logs.Len())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
