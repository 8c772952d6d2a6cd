package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/prometheus"
)

// Recovery turns a panic into a 500 and logs it.
func Recovery(logger logging.Logger, m *prometheus.AppMetrics) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			logging.String("path", c.Request.URL.Path),
			logging.String("panic", fmt.Sprint(recovered)),
			logging.String("request_id", GetRequestID(c)))
		if m != nil {
			prometheus.RecordError(m, "http", "panic")
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
