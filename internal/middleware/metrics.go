package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"route_dispatch/internal/metrics"
)

// CollectMetrics records request counts and latencies on the shared registry.
// The route template (not the raw path) is used as the label to keep
// cardinality bounded.
func CollectMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
