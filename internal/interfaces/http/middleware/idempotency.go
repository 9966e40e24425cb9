package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/duka/backend/internal/infrastructure/cache"
	"github.com/duka/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	IdempotentReplayHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLength = 128
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Store cache.IdempotencyStore
	// TTL is how long a completed response is replayed
	TTL time.Duration
	// LockTTL bounds how long an in-flight request holds its key
	LockTTL time.Duration
	Logger  *zap.Logger
}

// DefaultIdempotencyConfig returns default idempotency configuration
func DefaultIdempotencyConfig(store cache.IdempotencyStore) IdempotencyConfig {
	return IdempotencyConfig{
		Store:   store,
		TTL:     24 * time.Hour,
		LockTTL: 30 * time.Second,
	}
}

// captureWriter keeps a copy of the response body
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a request repeated with the
// same Idempotency-Key. Requests without the header pass through. Keys are
// scoped by shop, method and path. Only 2xx responses are stored; a failed
// request releases its key so the client may retry.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortIdempotent(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Idempotency key is too long")
			return
		}

		ctx := c.Request.Context()
		scoped := c.GetString(ShopIDKey) + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key

		reserved, err := cfg.Store.Reserve(ctx, scoped, cfg.LockTTL)
		if err != nil {
			cfg.Logger.Error("Idempotency reserve failed", zap.String("key", key), zap.Error(err))
			abortIdempotent(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to process idempotency key")
			return
		}
		if !reserved {
			replay(c, cfg, scoped)
			return
		}

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			if err := cfg.Store.Release(ctx, scoped); err != nil {
				cfg.Logger.Warn("Idempotency release failed", zap.String("key", key), zap.Error(err))
			}
			return
		}
		resp := cache.StoredResponse{
			Status:      status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		}
		if err := cfg.Store.Complete(ctx, scoped, resp, cfg.TTL); err != nil {
			cfg.Logger.Warn("Idempotency complete failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func replay(c *gin.Context, cfg IdempotencyConfig, scoped string) {
	stored, err := cfg.Store.Lookup(c.Request.Context(), scoped)
	switch {
	case errors.Is(err, cache.ErrRequestInProgress):
		abortIdempotent(c, http.StatusConflict, dto.ErrCodeRequestInProgress, "A request with this idempotency key is in progress")
	case err != nil:
		cfg.Logger.Error("Idempotency lookup failed", zap.Error(err))
		abortIdempotent(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to process idempotency key")
	case stored == nil:
		// completed entry expired between reserve and lookup
		abortIdempotent(c, http.StatusConflict, dto.ErrCodeRequestInProgress, "A request with this idempotency key is in progress")
	default:
		c.Header(IdempotentReplayHeader, "true")
		c.Data(stored.Status, stored.ContentType, stored.Body)
		c.Abort()
	}
}

func abortIdempotent(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
