package handler_test

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"testing"

	"github.com/duka/backend/internal/interfaces/http/handler"
	"github.com/duka/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func healthEngine(db handler.Pinger) *gin.Engine {
	engine := gin.New()
	engine.GET("/health", handler.NewSystemHandler("duka-backend", "1.2.3", db).Health)
	return engine
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name     string
		db       handler.Pinger
		status   int
		health   string
		database string
	}{
		{"no database", nil, http.StatusOK, "ok", "unknown"},
		{"database up", pingerFunc(func(context.Context) error { return nil }), http.StatusOK, "ok", "up"},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			http.StatusServiceUnavailable, "degraded", "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.PerformRequest(t, healthEngine(tt.db), http.MethodGet, "/health", nil, nil)
			assert.Equal(t, tt.status, w.Code)

			resp := testutil.DecodeJSON[testutil.APIResponse[handler.HealthResponse]](t, w)
			assert.Equal(t, tt.health, resp.Data.Status)
			assert.Equal(t, tt.database, resp.Data.Database)
			assert.Equal(t, "duka-backend", resp.Data.Name)
			assert.Equal(t, "1.2.3", resp.Data.Version)
			assert.Equal(t, runtime.Version(), resp.Data.GoVersion)
		})
	}
}

func TestSystemHandler_HealthThroughRouter(t *testing.T) {
	a := newAPI(t)

	w := testutil.PerformRequest(t, a.engine, http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := testutil.DecodeJSON[testutil.APIResponse[handler.HealthResponse]](t, w)
	assert.Equal(t, "up", resp.Data.Database)
}
