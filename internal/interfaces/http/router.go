package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaratCompare/internal/interfaces/http/handlers"
	"github.com/turtacn/CaratCompare/internal/interfaces/http/middleware"
	"github.com/turtacn/CaratCompare/pkg/errors"
	"github.com/turtacn/CaratCompare/web"
)

// DefaultMetricsPath is where the Prometheus exposition is served when
// RouterConfig.MetricsPath is empty.
const DefaultMetricsPath = "/metrics"

// RouterConfig aggregates the handlers and middleware dependencies required
// to build the route tree. Nil handlers leave their routes unregistered.
type RouterConfig struct {
	// Handlers
	SiteHandler   *handlers.SiteHandler
	APIHandler    *handlers.APIHandler
	HealthHandler *handlers.HealthHandler

	// Middleware
	Logging      middleware.LoggingConfig
	AllowOrigins []string
	RateLimiter  middleware.RateLimiter

	// Infrastructure
	Logger      logging.Logger
	Metrics     *prometheus.AppMetrics
	Collector   prometheus.MetricsCollector
	MetricsPath string
}

// NewRouter builds the gin engine. Global middleware runs in the order
// request id, recovery, logging, metrics, CORS, legacy redirect.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Logging.SlowThreshold == 0 && cfg.Logging.SkipPaths == nil {
		cfg.Logging = middleware.DefaultLoggingConfig()
	}

	r := gin.New()
	// Shape hubs are lower-case static routes; "/Oval" redirects to "/oval".
	r.RedirectFixedPath = true

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(cfg.Logger, cfg.Metrics),
		middleware.RequestLogging(cfg.Logger, cfg.Logging),
		middleware.Metrics(cfg.Metrics),
		middleware.CORS("/api/", cfg.AllowOrigins),
		middleware.LegacyRedirect(cfg.Metrics),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.Collector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = DefaultMetricsPath
		}
		r.GET(path, gin.WrapH(cfg.Collector.Handler()))
	}
	r.StaticFS("/static", http.FS(web.Static()))

	api := r.Group("/api/v1")
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	if cfg.APIHandler != nil {
		cfg.APIHandler.RegisterRoutes(api)
	}

	if cfg.SiteHandler != nil {
		cfg.SiteHandler.RegisterRoutes(r)
	}
	r.NoRoute(notFound(cfg.SiteHandler))
	return r
}

// notFound answers API paths with a JSON error and everything else with the
// site's 404 page.
func notFound(site *handlers.SiteHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || site == nil {
			c.JSON(http.StatusNotFound, handlers.ErrorResponse{
				Code:    errors.ErrCodeNotFound.String(),
				Message: errors.DefaultMessageForCode(errors.ErrCodeNotFound),
			})
			return
		}
		site.NotFound(c)
	}
}
