package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/duka/backend/internal/infrastructure/logger"
	"github.com/duka/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Shop context keys
const (
	ShopIDKey     = "shop_id"
	ShopHeaderKey = "X-Shop-ID"
)

// ErrNoShop is returned by GetShopID when no shop was resolved for the request
var ErrNoShop = errors.New("no shop in request context")

// ShopValidator checks that a resolved shop exists
type ShopValidator interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ShopMiddlewareConfig holds configuration for the shop middleware
type ShopMiddlewareConfig struct {
	// DefaultShopID is used when neither a token nor the header names a shop
	DefaultShopID string
	SkipPaths     []string
	Validator     ShopValidator
	Logger        *zap.Logger
}

// DefaultShopConfig returns default shop middleware configuration
func DefaultShopConfig(validator ShopValidator) ShopMiddlewareConfig {
	return ShopMiddlewareConfig{
		SkipPaths: []string{"/health", "/api/v1/health", "/api/v1/shops"},
		Validator: validator,
	}
}

// ShopContext resolves the acting shop.
// Resolution order: JWT claim > X-Shop-ID header > configured default.
func ShopContext(cfg ShopMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		raw, source := GetJWTShopID(c), "jwt"
		if raw == "" {
			raw, source = strings.TrimSpace(c.GetHeader(ShopHeaderKey)), "header"
		}
		if raw == "" {
			raw, source = cfg.DefaultShopID, "default"
		}
		if raw == "" {
			abortShop(c, http.StatusBadRequest, dto.ErrCodeInvalidShop, "Shop identification required")
			return
		}

		shopID, err := uuid.Parse(raw)
		if err != nil {
			abortShop(c, http.StatusBadRequest, dto.ErrCodeInvalidShop, "Invalid shop ID format")
			return
		}

		if cfg.Validator != nil {
			ok, err := cfg.Validator.Exists(c.Request.Context(), shopID)
			if err != nil {
				cfg.Logger.Error("Shop lookup failed", zap.String("shop_id", raw), zap.Error(err))
				abortShop(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Failed to resolve shop")
				return
			}
			if !ok {
				abortShop(c, http.StatusNotFound, dto.ErrCodeNotFound, "Shop not found")
				return
			}
		}

		c.Set(ShopIDKey, shopID.String())
		ctx := c.Request.Context()
		ctx, _ = logger.WithShopID(ctx, logger.FromContext(ctx), shopID.String())
		c.Request = c.Request.WithContext(ctx)

		cfg.Logger.Debug("Shop identified",
			zap.String("shop_id", shopID.String()),
			zap.String("source", source),
		)
		c.Next()
	}
}

func abortShop(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetShopID returns the resolved shop of the request
func GetShopID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetString(ShopIDKey)
	if raw == "" {
		return uuid.Nil, ErrNoShop
	}
	return uuid.Parse(raw)
}
