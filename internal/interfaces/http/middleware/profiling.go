package middleware

import (
	"context"
	"strings"

	"github.com/erp/manufacturing/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

var profilingSkipPrefixes = []string{"/health", "/ready", "/swagger"}

// Profiling tags each request's CPU samples with its route pattern and method
// so profiles can be filtered per endpoint. Disabled, it is a pass-through.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range profilingSkipPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		// FullPath is the pattern (/api/v1/orders/:id), keeping label cardinality low
		telemetry.WithRouteLabels(c.Request.Context(), c.FullPath(), c.Request.Method, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
