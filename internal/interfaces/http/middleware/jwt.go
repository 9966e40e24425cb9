package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/duka/backend/internal/infrastructure/auth"
	"github.com/duka/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTShopIDKey  = "jwt_shop_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

var errMissingAuthHeader = errors.New("missing authorization header")

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// SkipPaths are paths that never require a token
	SkipPaths []string
	// Required rejects requests without a token. When false a token is
	// still validated if one is sent.
	Required bool
	Logger   *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/health", "/api/v1/health"},
		Required:   true,
	}
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		for _, skipPath := range cfg.SkipPaths {
			if c.Request.URL.Path == skipPath {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			if cfg.Required {
				abortAuth(c, cfg, errMissingAuthHeader, "Missing authorization header")
				return
			}
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortAuth(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			abortAuth(c, cfg, err, "Token validation failed")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTShopIDKey, claims.ShopID)
		cfg.Logger.Debug("JWT authentication successful",
			zap.String("subject", claims.Subject),
			zap.String("shop_id", claims.ShopID),
		)
		c.Next()
	}
}

func abortAuth(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	cfg.Logger.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code, text := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, text = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, text = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingShopID):
		code, text = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, text, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTShopID retrieves the shop ID claim from context
func GetJWTShopID(c *gin.Context) string {
	return c.GetString(JWTShopIDKey)
}
