package middleware

import (
	"strconv"
	"time"

	"sentinal-social/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request counts and latencies. Routes are
// labelled by template, never by raw path.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
