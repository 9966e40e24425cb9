package middleware

import (
	"context"
	"strings"

	"github.com/duka/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled   bool
	SkipPaths []string
}

// DefaultProfilingConfig returns default profiling middleware configuration.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health", "/api/v1/health"},
	}
}

// ProfilingWithConfig tags the handler goroutine with pyroscope labels
// (route, method, shop_id) so profiles can be sliced per endpoint and shop.
// Place it after the shop middleware.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	return map[string]string{
		telemetry.ProfilingLabelMethod: c.Request.Method,
		telemetry.ProfilingLabelRoute:  c.FullPath(),
		telemetry.ProfilingLabelShopID: c.GetString(ShopIDKey),
	}
}
