package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/prometheus"
)

// LegacyRedirect permanently redirects "/?carat1=&shape1=&carat2=&shape2="
// to the comparison page. The sides keep their query order. Requests with a
// missing parameter, an unparseable carat or an unknown shape pass through.
func LegacyRedirect(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path != "/" || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.Next()
			return
		}
		q := c.Request.URL.Query()
		for _, k := range []string{"carat1", "shape1", "carat2", "shape2"} {
			if !q.Has(k) {
				c.Next()
				return
			}
		}
		slug, ok := comparison.FromQuery(q.Get("carat1"), q.Get("shape1"), q.Get("carat2"), q.Get("shape2"))
		if !ok {
			c.Next()
			return
		}
		if m != nil {
			m.LegacyRedirectsTotal.WithLabelValues().Inc()
		}
		c.Redirect(http.StatusMovedPermanently, "/compare/"+slug)
		c.Abort()
	}
}
