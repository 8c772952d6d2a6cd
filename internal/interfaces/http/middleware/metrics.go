package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request count, latency and size per route pattern.
// Unmatched routes share the "unmatched" label.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		active := m.HTTPActiveRequests.WithLabelValues(c.Request.Method)
		active.Inc()
		defer active.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		prometheus.RecordHTTPRequest(m, c.Request.Method, route, c.Writer.Status(), time.Since(start), c.Writer.Size())
	}
}
