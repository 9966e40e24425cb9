package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/duka/backend/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Complete(ctx context.Context, key string, resp cache.StoredResponse, ttl time.Duration) error {
	return m.Called(ctx, key, resp, ttl).Error(0)
}

func (m *mockIdempotencyStore) Lookup(ctx context.Context, key string) (*cache.StoredResponse, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.StoredResponse), args.Error(1)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

func idempotentRouter(store cache.IdempotencyStore, status int, calls *int) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ShopIDKey, "shop-1")
		c.Next()
	})
	router.Use(Idempotency(DefaultIdempotencyConfig(store)))
	router.POST("/api/v1/debts/:id/payments", func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"call": *calls})
	})
	return router
}

func postPayment(router http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/debts/d1/payments", strings.NewReader(`{"amount":"500"}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	calls := 0
	router := idempotentRouter(store, http.StatusCreated, &calls)

	first := postPayment(router, "pay-1")
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(IdempotentReplayHeader))

	second := postPayment(router, "pay-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(IdempotentReplayHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	postPayment(router, "pay-2")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_WithoutKeyAlwaysRuns(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	calls := 0
	router := idempotentRouter(store, http.StatusCreated, &calls)

	postPayment(router, "")
	postPayment(router, "")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_FailureReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	calls := 0
	router := idempotentRouter(store, http.StatusUnprocessableEntity, &calls)

	postPayment(router, "pay-1")
	w := postPayment(router, "pay-1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_InProgress(t *testing.T) {
	store := new(mockIdempotencyStore)
	store.On("Reserve", mock.Anything, "shop-1:POST:/api/v1/debts/:id/payments:pay-1", 30*time.Second).Return(false, nil)
	store.On("Lookup", mock.Anything, "shop-1:POST:/api/v1/debts/:id/payments:pay-1").Return(nil, cache.ErrRequestInProgress)
	calls := 0

	w := postPayment(idempotentRouter(store, http.StatusCreated, &calls), "pay-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_REQUEST_IN_PROGRESS")
	assert.Zero(t, calls)
	store.AssertExpectations(t)
}

func TestIdempotency_StoreErrors(t *testing.T) {
	store := new(mockIdempotencyStore)
	store.On("Reserve", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	calls := 0

	w := postPayment(idempotentRouter(store, http.StatusCreated, &calls), "pay-1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, calls)

	w = postPayment(idempotentRouter(store, http.StatusCreated, &calls), strings.Repeat("k", maxIdempotencyKeyLength+1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
