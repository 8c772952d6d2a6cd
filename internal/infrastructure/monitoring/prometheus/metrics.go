package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric family the site records.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Pages
	PageRendersTotal     CounterVec
	PageRenderDuration   HistogramVec
	SlugDecodeFailures   CounterVec
	DimensionLookupMiss  CounterVec
	LegacyRedirectsTotal CounterVec

	// Cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	CacheErrorsTotal CounterVec

	// Prerender / publish
	PrerenderRunsTotal     CounterVec
	PrerenderDuration      HistogramVec
	PrerenderPages         GaugeVec
	PublishedEventsTotal   CounterVec
	MessageProcessDuration HistogramVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets      = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}
	DefaultSizeBuckets              = []float64{1000, 5000, 10000, 50000, 100000, 500000}
	DefaultPrerenderDurationBuckets = []float64{.5, 1, 2, 5, 10, 30, 60, 120, 300}
)

// NewAppMetrics registers all families on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.PageRendersTotal = collector.RegisterCounter("page_renders_total", "Rendered pages", "kind")
	m.PageRenderDuration = collector.RegisterHistogram("page_render_duration_seconds", "Page render duration", DefaultHTTPDurationBuckets, "kind")
	m.SlugDecodeFailures = collector.RegisterCounter("slug_decode_failures_total", "Comparison slugs that failed to decode")
	m.DimensionLookupMiss = collector.RegisterCounter("dimension_lookup_misses_total", "Comparisons rendered without dimension data")
	m.LegacyRedirectsTotal = collector.RegisterCounter("legacy_redirects_total", "Query-string URLs redirected to comparison slugs")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.CacheErrorsTotal = collector.RegisterCounter("cache_errors_total", "Cache errors", "cache", "operation")

	m.PrerenderRunsTotal = collector.RegisterCounter("prerender_runs_total", "Prerender runs", "status")
	m.PrerenderDuration = collector.RegisterHistogram("prerender_duration_seconds", "Prerender run duration", DefaultPrerenderDurationBuckets, "target")
	m.PrerenderPages = collector.RegisterGauge("prerender_pages", "Pages written by the last prerender run", "target")
	m.PublishedEventsTotal = collector.RegisterCounter("published_events_total", "Site published events", "status")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultPrerenderDurationBuckets, "topic")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// NewNopAppMetrics returns metrics that discard every observation.
func NewNopAppMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:      noopCounterVec{},
		HTTPRequestDuration:    noopHistogramVec{},
		HTTPResponseSize:       noopHistogramVec{},
		HTTPActiveRequests:     noopGaugeVec{},
		PageRendersTotal:       noopCounterVec{},
		PageRenderDuration:     noopHistogramVec{},
		SlugDecodeFailures:     noopCounterVec{},
		DimensionLookupMiss:    noopCounterVec{},
		LegacyRedirectsTotal:   noopCounterVec{},
		CacheHitsTotal:         noopCounterVec{},
		CacheMissesTotal:       noopCounterVec{},
		CacheErrorsTotal:       noopCounterVec{},
		PrerenderRunsTotal:     noopCounterVec{},
		PrerenderDuration:      noopHistogramVec{},
		PrerenderPages:         noopGaugeVec{},
		PublishedEventsTotal:   noopCounterVec{},
		MessageProcessDuration: noopHistogramVec{},
		HealthCheckStatus:      noopGaugeVec{},
		ErrorsTotal:            noopCounterVec{},
	}
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration, respSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if respSize >= 0 {
		m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
	}
}

// RecordPageRender records one rendered page of kind.
func RecordPageRender(m *AppMetrics, kind string, duration time.Duration) {
	m.PageRendersTotal.WithLabelValues(kind).Inc()
	m.PageRenderDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordCacheAccess records a hit or miss on cache.
func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordPrerender records the outcome of a prerender run.
func RecordPrerender(m *AppMetrics, target string, pages int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.PrerenderRunsTotal.WithLabelValues(status).Inc()
	m.PrerenderDuration.WithLabelValues(target).Observe(duration.Seconds())
	if err == nil {
		m.PrerenderPages.WithLabelValues(target).Set(float64(pages))
	}
}

// RecordHealth sets the health gauge of component.
func RecordHealth(m *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

// RecordError counts an error of errorType in component.
func RecordError(m *AppMetrics, component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
