package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaratCompare/internal/interfaces/http"
	"github.com/turtacn/CaratCompare/internal/interfaces/http/handlers"
	"github.com/turtacn/CaratCompare/internal/interfaces/http/middleware"
)

// Router builds the site, API and probe routes over the connected
// backends. The returned limiter is nil when rate limiting is disabled.
func (i *Infra) Router(version string, siteOpts ...handlers.SiteOption) (*gin.Engine, *middleware.KeyedLimiter) {
	cfg := i.Config
	log := i.Logger.Named("http")

	opts := []handlers.SiteOption{handlers.WithSiteMetrics(i.Metrics)}
	if i.Cache != nil {
		opts = append(opts, handlers.WithPageCache(i.Cache, cfg.Redis.PageTTL))
	}
	opts = append(opts, siteOpts...)

	rc := http.RouterConfig{
		SiteHandler:   handlers.NewSiteHandler(i.Pages, i.Renderer, log, opts...),
		APIHandler:    handlers.NewAPIHandler(i.Pages, log),
		HealthHandler: handlers.NewHealthHandler(version, i.Metrics, i.HealthCheckers()...),
		Logging:       middleware.DefaultLoggingConfig(),
		AllowOrigins:  cfg.Site.AllowOrigins,
		Logger:        log,
		Metrics:       i.Metrics,
		Collector:     i.Collector,
		MetricsPath:   cfg.Metrics.Path,
	}

	var limiter *middleware.KeyedLimiter
	if cfg.Server.RateLimitRPS > 0 {
		limiter = middleware.NewKeyedLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
		rc.RateLimiter = limiter
	}
	return http.NewRouter(rc), limiter
}
