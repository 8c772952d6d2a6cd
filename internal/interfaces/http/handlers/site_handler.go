package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaratCompare/internal/application/content"
	"github.com/turtacn/CaratCompare/internal/application/prerender"
	"github.com/turtacn/CaratCompare/internal/application/sitemap"
	"github.com/turtacn/CaratCompare/internal/domain/diamond"
	"github.com/turtacn/CaratCompare/internal/infrastructure/database/redis"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaratCompare/pkg/errors"
	"github.com/turtacn/CaratCompare/web"
)

// SiteHandler serves the HTML pages and the sitemap.
type SiteHandler struct {
	pages    *content.Pages
	renderer *web.Renderer
	sitemap  *sitemap.Builder
	cache    redis.Cache
	ttl      time.Duration
	selector content.Selector
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

// SiteOption configures a SiteHandler.
type SiteOption func(*SiteHandler)

// WithPageCache serves comparison, hub and sitemap responses through cache.
// The home page is never cached.
func WithPageCache(cache redis.Cache, ttl time.Duration) SiteOption {
	return func(h *SiteHandler) { h.cache, h.ttl = cache, ttl }
}

// WithSelector sets how the home page picks its pair when no query
// parameters are given.
func WithSelector(sel content.Selector) SiteOption {
	return func(h *SiteHandler) { h.selector = sel }
}

// WithSiteMetrics records render, cache and decode metrics on m.
func WithSiteMetrics(m *prometheus.AppMetrics) SiteOption {
	return func(h *SiteHandler) { h.metrics = m }
}

// WithSitemapBuilder replaces the default sitemap builder.
func WithSitemapBuilder(b *sitemap.Builder) SiteOption {
	return func(h *SiteHandler) { h.sitemap = b }
}

// NewSiteHandler creates a SiteHandler.
func NewSiteHandler(pages *content.Pages, renderer *web.Renderer, log logging.Logger, opts ...SiteOption) *SiteHandler {
	h := &SiteHandler{pages: pages, renderer: renderer, logger: log}
	for _, o := range opts {
		o(h)
	}
	if h.metrics == nil {
		h.metrics = prometheus.NewNopAppMetrics()
	}
	if h.selector == nil {
		h.selector = content.NewRandomSelector(time.Now().UnixNano())
	}
	if h.sitemap == nil {
		h.sitemap = sitemap.NewBuilder(pages.Site())
	}
	return h
}

// RegisterRoutes mounts the page routes. Each shape hub is a static route so
// that it cannot shadow /compare, /carat or /sitemap.xml.
func (h *SiteHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Home)
	r.GET("/compare/:slug", h.Compare)
	for _, s := range diamond.Shapes() {
		r.GET(content.ShapePath(s), h.Shape)
	}
	r.GET("/carat/:carat", h.Carat)
	r.GET("/sitemap.xml", h.Sitemap)
}

// Home renders the comparison tool. Partial query parameters are filled
// with defaults; a full set never reaches here, the legacy redirect takes it.
func (h *SiteHandler) Home(c *gin.Context) {
	page, err := h.render(prerender.KindHome, web.PageHome, h.pages.Home(c.Request.URL.Query(), h.selector))
	if err != nil {
		h.fail(c, prerender.KindHome, err)
		return
	}
	c.Data(page.Status, page.ContentType, []byte(page.Body))
}

// Compare renders /compare/:slug. Slugs that do not decode get the 404 page.
func (h *SiteHandler) Compare(c *gin.Context) {
	slug := c.Param("slug")
	h.serve(c, prerender.KindCompare, func() (redis.Page, error) {
		page, err := h.pages.Compare(slug)
		if err != nil {
			return redis.Page{}, err
		}
		if page.Description.Missing() {
			h.metrics.DimensionLookupMiss.WithLabelValues().Inc()
		}
		return h.render(prerender.KindCompare, web.PageCompare, page)
	})
}

// Shape renders a shape hub. The shape is the request path.
func (h *SiteHandler) Shape(c *gin.Context) {
	raw := strings.TrimPrefix(c.Request.URL.Path, "/")
	h.serve(c, prerender.KindShape, func() (redis.Page, error) {
		page, err := h.pages.ShapeHub(raw)
		if err != nil {
			return redis.Page{}, err
		}
		return h.render(prerender.KindShape, web.PageShape, page)
	})
}

// Carat renders /carat/:carat.
func (h *SiteHandler) Carat(c *gin.Context) {
	raw := c.Param("carat")
	h.serve(c, prerender.KindCarat, func() (redis.Page, error) {
		page, err := h.pages.CaratHub(raw)
		if err != nil {
			return redis.Page{}, err
		}
		return h.render(prerender.KindCarat, web.PageCarat, page)
	})
}

// Sitemap serves /sitemap.xml.
func (h *SiteHandler) Sitemap(c *gin.Context) {
	c.Header("Cache-Control", sitemap.CacheControl)
	h.serve(c, prerender.KindSitemap, func() (redis.Page, error) {
		start := time.Now()
		body, err := h.sitemap.XML()
		if err != nil {
			return redis.Page{}, err
		}
		prometheus.RecordPageRender(h.metrics, prerender.KindSitemap, time.Since(start))
		return redis.Page{Status: http.StatusOK, ContentType: sitemap.ContentType, Body: string(body)}, nil
	})
}

// NotFound renders the 404 page.
func (h *SiteHandler) NotFound(c *gin.Context) {
	body, err := h.renderer.RenderBytes(web.PageNotFound, h.pages.NotFound())
	if err != nil {
		h.logger.Error("Failed to render not found page", logging.Err(err))
		c.String(http.StatusNotFound, "404 page not found")
		return
	}
	c.Data(http.StatusNotFound, prerender.ContentTypeHTML, body)
}

func (h *SiteHandler) render(kind, name string, data interface{}) (redis.Page, error) {
	start := time.Now()
	body, err := h.renderer.RenderBytes(name, data)
	if err != nil {
		return redis.Page{}, err
	}
	prometheus.RecordPageRender(h.metrics, kind, time.Since(start))
	return redis.Page{Status: http.StatusOK, ContentType: prerender.ContentTypeHTML, Body: string(body)}, nil
}

func (h *SiteHandler) serve(c *gin.Context, kind string, build func() (redis.Page, error)) {
	page, err := h.load(c.Request.Context(), c.Request.URL.Path, build)
	if err != nil {
		h.fail(c, kind, err)
		return
	}
	c.Data(page.Status, page.ContentType, []byte(page.Body))
}

// load reads the page for path from the cache, building and storing it on a
// miss. Cache failures fall back to building directly.
func (h *SiteHandler) load(ctx context.Context, path string, build func() (redis.Page, error)) (redis.Page, error) {
	if h.cache == nil {
		return build()
	}

	var (
		page     redis.Page
		buildErr error
		missed   bool
	)
	err := h.cache.GetOrSet(ctx, redis.PageKey(path), &page, h.ttl, func(context.Context) (interface{}, error) {
		missed = true
		p, err := build()
		if err != nil {
			buildErr = err
			return nil, err
		}
		return p, nil
	})
	switch {
	case buildErr != nil:
		return redis.Page{}, buildErr
	case err != nil:
		h.logger.Warn("Page cache unavailable, rendering directly", logging.String("path", path), logging.Err(err))
		h.metrics.CacheErrorsTotal.WithLabelValues("page", "get_or_set").Inc()
		return build()
	}
	prometheus.RecordCacheAccess(h.metrics, "page", !missed)
	return page, nil
}

func (h *SiteHandler) fail(c *gin.Context, kind string, err error) {
	if errors.HTTPStatus(err) == http.StatusNotFound {
		if errors.IsCode(err, errors.ErrCodeInvalidSlug) {
			h.metrics.SlugDecodeFailures.WithLabelValues().Inc()
		}
		h.logger.Debug("Page not found", logging.String("kind", kind), logging.String("path", c.Request.URL.Path), logging.Err(err))
		h.NotFound(c)
		return
	}
	h.logger.Error("Page render failed", logging.String("kind", kind), logging.String("path", c.Request.URL.Path), logging.Err(err))
	prometheus.RecordError(h.metrics, "http", "render")
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
