package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akotolabs/waflow/internal/service"
)

// Metrics records per-request duration and status counters. The route
// template is preferred over the raw URL so tenant IDs don't explode
// label cardinality.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
