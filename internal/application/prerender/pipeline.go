// Package prerender renders every page of the site ahead of time and
// publishes the result to a Sink, optionally warming the page cache and
// announcing the run on Kafka.
package prerender

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/CaratCompare/internal/application/content"
	"github.com/turtacn/CaratCompare/internal/application/sitemap"
	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/internal/domain/diamond"
	"github.com/turtacn/CaratCompare/internal/infrastructure/database/redis"
	"github.com/turtacn/CaratCompare/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaratCompare/pkg/errors"
	"github.com/turtacn/CaratCompare/web"
)

const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeXML  = sitemap.ContentType
	ContentTypeJSON = "application/json"

	SitemapKey  = "sitemap.xml"
	ManifestKey = "manifest.json"

	lockName      = "prerender"
	warmChunkSize = 200
)

// Page kinds.
const (
	KindHome    = "home"
	KindShape   = "shape"
	KindCarat   = "carat"
	KindCompare = "compare"
	KindSitemap = "sitemap"
)

// Page is one rendered object.
type Page struct {
	Path        string
	Key         string
	Kind        string
	ContentType string
	Body        []byte
}

// ManifestEntry describes one written object.
type ManifestEntry struct {
	Path        string `json:"path"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
	SHA256      string `json:"sha256"`
}

// Manifest lists the objects of a run in render order.
type Manifest struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Pages       []ManifestEntry `json:"pages"`
}

// Result summarises a run.
type Result struct {
	RunID       string
	Pages       int
	SitemapKey  string
	ManifestKey string
	Duration    time.Duration
	Manifest    *Manifest
}

// KeyFor maps a site path to its object key.
func KeyFor(path string) string {
	switch {
	case path == "/":
		return "index.html"
	case strings.HasSuffix(path, ".xml"), strings.HasSuffix(path, ".json"):
		return strings.TrimPrefix(path, "/")
	default:
		return strings.TrimPrefix(path, "/") + ".html"
	}
}

type target struct {
	path  string
	kind  string
	shape diamond.Shape
	carat diamond.Carat
	cmp   comparison.Comparison
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency bounds the number of pages rendered or written at once.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithClock sets the time source for lastmod and manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithEntries replaces the comparison list.
func WithEntries(fn func() []comparison.Entry) Option {
	return func(p *Pipeline) { p.entries = fn }
}

// WithSelector sets the pair shown on the static home page.
func WithSelector(sel content.Selector) Option {
	return func(p *Pipeline) { p.selector = sel }
}

// WithMetrics records render and run metrics.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCache warms cache with every cacheable page after a publish.
func WithCache(cache redis.Cache, ttl time.Duration) Option {
	return func(p *Pipeline) { p.cache, p.cacheTTL = cache, ttl }
}

// WithLocks serialises publishes across workers.
func WithLocks(f redis.LockFactory, ttl time.Duration) Option {
	return func(p *Pipeline) { p.locks, p.lockTTL = f, ttl }
}

// WithPublisher announces completed publishes on topic.
func WithPublisher(pub kafka.Publisher, topic string) Option {
	return func(p *Pipeline) { p.publisher, p.topic = pub, topic }
}

// WithRunID sets the run id generator.
func WithRunID(fn func() string) Option {
	return func(p *Pipeline) { p.runID = fn }
}

// Pipeline renders and publishes the site.
type Pipeline struct {
	pages    *content.Pages
	renderer *web.Renderer
	logger   logging.Logger

	concurrency int
	now         func() time.Time
	entries     func() []comparison.Entry
	selector    content.Selector
	metrics     *prometheus.AppMetrics
	runID       func() string

	cache    redis.Cache
	cacheTTL time.Duration

	locks   redis.LockFactory
	lockTTL time.Duration

	publisher kafka.Publisher
	topic     string
}

// New returns a Pipeline over pages and renderer.
func New(pages *content.Pages, renderer *web.Renderer, log logging.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		pages:       pages,
		renderer:    renderer,
		logger:      log,
		concurrency: 8,
		now:         time.Now,
		entries:     comparison.Enumerate,
		metrics:     prometheus.NewNopAppMetrics(),
		runID:       func() string { return uuid.New().String() },
		lockTTL:     5 * time.Minute,
		topic:       kafka.TopicSitePublished,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.selector == nil {
		if e := p.entries(); len(e) > 0 {
			p.selector = content.FixedSelector(e[0].Comparison)
		} else {
			p.selector = content.NewRandomSelector(p.now().UnixNano())
		}
	}
	return p
}

func (p *Pipeline) targets(entries []comparison.Entry) []target {
	shapes, carats := diamond.Shapes(), diamond.ValidCarats()
	out := make([]target, 0, 1+len(shapes)+len(carats)+len(entries))
	out = append(out, target{path: "/", kind: KindHome})
	for _, s := range shapes {
		out = append(out, target{path: content.ShapePath(s), kind: KindShape, shape: s})
	}
	for _, c := range carats {
		out = append(out, target{path: content.CaratPath(c), kind: KindCarat, carat: c})
	}
	for _, e := range entries {
		out = append(out, target{path: "/compare/" + e.Slug, kind: KindCompare, cmp: e.Comparison})
	}
	return out
}

// Render renders every page and the sitemap. The result follows the sitemap
// order regardless of which page finished first.
func (p *Pipeline) Render(ctx context.Context) ([]Page, error) {
	entries := p.entries()
	targets := p.targets(entries)
	out := make([]Page, len(targets), len(targets)+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := p.renderOne(t)
			if err != nil {
				return err
			}
			out[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	xml, err := sitemap.NewBuilder(p.pages.Site(),
		sitemap.WithClock(p.now),
		sitemap.WithEntries(func() []comparison.Entry { return entries }),
	).XML()
	if err != nil {
		return nil, err
	}
	out = append(out, Page{Path: "/" + SitemapKey, Key: SitemapKey, Kind: KindSitemap, ContentType: ContentTypeXML, Body: xml})
	return out, nil
}

func (p *Pipeline) renderOne(t target) (Page, error) {
	start := time.Now()
	var (
		name string
		data interface{}
		err  error
	)
	switch t.kind {
	case KindHome:
		name, data = web.PageHome, p.pages.Home(nil, p.selector)
	case KindShape:
		name = web.PageShape
		data, err = p.pages.ShapeHub(string(t.shape))
	case KindCarat:
		name = web.PageCarat
		data, err = p.pages.CaratHub(t.carat.String())
	case KindCompare:
		name, data = web.PageCompare, p.pages.CompareFor(t.cmp)
	}
	if err != nil {
		return Page{}, err
	}

	body, err := p.renderer.RenderBytes(name, data)
	if err != nil {
		prometheus.RecordError(p.metrics, "prerender", "render")
		return Page{}, err
	}
	prometheus.RecordPageRender(p.metrics, t.kind, time.Since(start))
	return Page{Path: t.path, Key: KeyFor(t.path), Kind: t.kind, ContentType: ContentTypeHTML, Body: body}, nil
}

// Write stores pages in sink and then a manifest describing them.
func (p *Pipeline) Write(ctx context.Context, sink Sink, runID string, pages []Page) (*Manifest, error) {
	m := &Manifest{RunID: runID, GeneratedAt: p.now().UTC(), Pages: make([]ManifestEntry, len(pages))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, pg := range pages {
		i, pg := i, pg
		g.Go(func() error {
			if err := sink.Write(gctx, pg.Key, pg.Body, pg.ContentType); err != nil {
				return err
			}
			sum := sha256.Sum256(pg.Body)
			m.Pages[i] = ManifestEntry{
				Path:        pg.Path,
				Key:         pg.Key,
				ContentType: pg.ContentType,
				Bytes:       len(pg.Body),
				SHA256:      hex.EncodeToString(sum[:]),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal manifest")
	}
	if err := sink.Write(ctx, ManifestKey, raw, ContentTypeJSON); err != nil {
		return nil, err
	}
	return m, nil
}

// Run renders the site into sink. target labels the run in metrics.
func (p *Pipeline) Run(ctx context.Context, sink Sink, target string) (*Result, error) {
	start := time.Now()
	pages, err := p.Render(ctx)
	if err != nil {
		prometheus.RecordPrerender(p.metrics, target, 0, time.Since(start), err)
		p.logger.Error("render failed", logging.Err(err), logging.String("target", target))
		return nil, err
	}
	return p.store(ctx, sink, target, pages, start)
}

func (p *Pipeline) store(ctx context.Context, sink Sink, target string, pages []Page, start time.Time) (*Result, error) {
	runID := p.runID()
	log := p.logger.With(logging.String("run_id", runID), logging.String("target", target))

	manifest, err := p.Write(ctx, sink, runID, pages)
	prometheus.RecordPrerender(p.metrics, target, len(pages)-1, time.Since(start), err)
	if err != nil {
		log.Error("write failed", logging.Err(err))
		return nil, err
	}

	res := &Result{
		RunID:       runID,
		Pages:       len(pages) - 1,
		SitemapKey:  SitemapKey,
		ManifestKey: ManifestKey,
		Duration:    time.Since(start),
		Manifest:    manifest,
	}
	log.Info("prerender complete", logging.Int("pages", res.Pages), logging.Duration("duration", res.Duration))
	return res, nil
}

// Publish takes the publish lock, renders the site into sink, warms the page
// cache and emits a site published event. Cache and event failures are
// logged; only the event failure is returned, together with the result.
func (p *Pipeline) Publish(ctx context.Context, sink Sink) (*Result, error) {
	if p.locks != nil {
		lease, err := p.locks.Acquire(ctx, lockName, p.lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lease.Release(context.Background()); err != nil {
				p.logger.Warn("release publish lock failed", logging.Err(err))
			}
		}()
	}

	start := time.Now()
	pages, err := p.Render(ctx)
	if err != nil {
		prometheus.RecordPrerender(p.metrics, "publish", 0, time.Since(start), err)
		return nil, err
	}
	res, err := p.store(ctx, sink, "publish", pages, start)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.warm(ctx, pages); err != nil {
			prometheus.RecordError(p.metrics, "prerender", "cache_warm")
			p.logger.Warn("cache warm failed", logging.Err(err), logging.String("run_id", res.RunID))
		}
	}

	if p.publisher != nil {
		payload := kafka.SitePublishedPayload{
			RunID:       res.RunID,
			Pages:       res.Pages,
			SitemapKey:  res.SitemapKey,
			PublishedAt: p.now().UTC(),
		}
		if _, err := kafka.PublishEvent(ctx, p.publisher, p.topic, kafka.EventSitePublished, "prerender", res.RunID, payload); err != nil {
			p.metrics.PublishedEventsTotal.WithLabelValues("failure").Inc()
			p.logger.Error("publish event failed", logging.Err(err), logging.String("run_id", res.RunID))
			return res, errors.Wrap(err, errors.ErrCodePublishFailed, "announce publish").WithDetail(res.RunID)
		}
		p.metrics.PublishedEventsTotal.WithLabelValues("success").Inc()
	}
	return res, nil
}

// warm drops every cached page, then loads every rendered page except the
// home page, whose pair varies per request. Pages cached from requests the
// enumeration does not cover are rebuilt on their next hit.
func (p *Pipeline) warm(ctx context.Context, pages []Page) error {
	purged, err := p.cache.Purge(ctx, redis.PagePrefix)
	if err != nil {
		return err
	}
	p.logger.Debug("page cache purged", logging.Int64("keys", purged))

	items := make(map[string]interface{}, warmChunkSize)
	flush := func() error {
		if len(items) == 0 {
			return nil
		}
		err := p.cache.MSet(ctx, items, p.cacheTTL)
		items = make(map[string]interface{}, warmChunkSize)
		return err
	}
	for _, pg := range pages {
		if pg.Kind == KindHome {
			continue
		}
		items[redis.PageKey(pg.Path)] = redis.Page{Status: 200, ContentType: pg.ContentType, Body: string(pg.Body)}
		if len(items) == warmChunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
