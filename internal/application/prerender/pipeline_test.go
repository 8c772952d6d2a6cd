package prerender

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaratCompare/internal/application/content"
	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/internal/domain/diamond"
	"github.com/turtacn/CaratCompare/internal/infrastructure/database/redis"
	"github.com/turtacn/CaratCompare/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/CaratCompare/pkg/errors"
	"github.com/turtacn/CaratCompare/web"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func firstEntries(n int) func() []comparison.Entry {
	return func() []comparison.Entry { return comparison.Enumerate()[:n] }
}

func newPipeline(opts ...Option) *Pipeline {
	pages := content.NewPages(content.Site{Name: "Carat Compare", BaseURL: "https://www.caratcompare.co"}, diamond.MustDefaultTable())
	base := []Option{
		WithEntries(firstEntries(3)),
		WithClock(func() time.Time { return fixedNow }),
		WithRunID(func() string { return "run-1" }),
		WithConcurrency(4),
	}
	return New(pages, web.MustRenderer(), logging.NewNopLogger(), append(base, opts...)...)
}

func TestKeyFor(t *testing.T) {
	cases := map[string]string{
		"/":                             "index.html",
		"/round":                        "round.html",
		"/carat/1.25":                   "carat/1.25.html",
		"/compare/1-round-vs-1.5-round": "compare/1-round-vs-1.5-round.html",
		"/sitemap.xml":                  "sitemap.xml",
	}
	for in, want := range cases {
		assert.Equal(t, want, KeyFor(in), in)
	}
}

func TestRender_Order(t *testing.T) {
	pages, err := newPipeline(WithConcurrency(16)).Render(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 1+10+16+3+1)

	var paths []string
	for _, p := range pages {
		paths = append(paths, p.Path)
	}
	want := []string{"/", "/round", "/princess"}
	assert.Empty(t, cmp.Diff(want, paths[:3]))
	assert.Equal(t, "/carat/0.25", paths[11])
	assert.Equal(t, "/compare/0.5-round-vs-0.75-round", paths[27])
	assert.Equal(t, "/sitemap.xml", paths[30])

	sm := string(pages[30].Body)
	assert.Contains(t, sm, "<lastmod>2024-06-01T00:00:00Z</lastmod>")
	assert.Equal(t, 30, strings.Count(sm, "<url>"))
	assert.Contains(t, string(pages[27].Body), "<title>0.5ct Round vs 0.75ct Round Diamond | Carat Compare</title>")
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPipeline().Render(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_MemorySink(t *testing.T) {
	sink := NewMemorySink()
	res, err := newPipeline().Run(context.Background(), sink, "memory")
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 30, res.Pages)
	assert.Equal(t, 32, sink.Len())

	_, ct, ok := sink.Get("compare/0.5-round-vs-1-round.html")
	assert.True(t, ok)
	assert.Equal(t, ContentTypeHTML, ct)

	raw, ct, ok := sink.Get(ManifestKey)
	require.True(t, ok)
	assert.Equal(t, ContentTypeJSON, ct)
	var m Manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "run-1", m.RunID)
	require.Len(t, m.Pages, 31)
	assert.Equal(t, "index.html", m.Pages[0].Key)
	assert.Equal(t, SitemapKey, m.Pages[30].Key)
	assert.Len(t, m.Pages[0].SHA256, 64)
}

func TestRun_DirSink(t *testing.T) {
	dir := t.TempDir()
	_, err := newPipeline().Run(context.Background(), DirSink{Root: dir}, "dir")
	require.NoError(t, err)

	for _, key := range []string{"index.html", "heart.html", "carat/4.html", "compare/0.5-round-vs-0.75-round.html", SitemapKey, ManifestKey} {
		_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
		assert.NoError(t, err, key)
	}
}

type failingSink struct{ key string }

func (f failingSink) Write(_ context.Context, key string, _ []byte, _ string) error {
	if key == f.key {
		return pkgerrors.New(pkgerrors.ErrCodeStorageError, "disk full")
	}
	return nil
}

func TestRun_SinkError(t *testing.T) {
	_, err := newPipeline().Run(context.Background(), failingSink{key: "round.html"}, "dir")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeStorageError))
}

type fakeLock struct {
	acquire  bool
	err      error
	released bool
}

func (l *fakeLock) Key() string { return "caratcompare:lock:prerender" }
func (l *fakeLock) Release(context.Context) error {
	l.released = true
	return nil
}

type fakeLocks struct {
	lock *fakeLock
	name string
	ttl  time.Duration
}

func (f *fakeLocks) Acquire(_ context.Context, name string, ttl time.Duration) (redis.Lease, error) {
	f.name, f.ttl = name, ttl
	if f.lock.err != nil {
		return nil, f.lock.err
	}
	if !f.lock.acquire {
		return nil, redis.ErrLockNotAcquired.WithDetail(name)
	}
	return f.lock, nil
}

type fakeCache struct {
	redis.Cache
	mu       sync.Mutex
	items    map[string]interface{}
	purged   []string
	err      error
	purgeErr error
}

func (c *fakeCache) Purge(_ context.Context, prefix string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purged = append(c.purged, prefix)
	return int64(len(c.items)), c.purgeErr
}

func (c *fakeCache) MSet(_ context.Context, items map[string]interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = map[string]interface{}{}
	}
	for k, v := range items {
		c.items[k] = v
	}
	return c.err
}

type capturePublisher struct {
	msgs []*kafka.ProducerMessage
	err  error
}

func (c *capturePublisher) Publish(_ context.Context, msg *kafka.ProducerMessage) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestPublish_Full(t *testing.T) {
	lock := &fakeLock{acquire: true}
	locks := &fakeLocks{lock: lock}
	cache := &fakeCache{}
	pub := &capturePublisher{}

	p := newPipeline(
		WithLocks(locks, time.Minute),
		WithCache(cache, time.Hour),
		WithPublisher(pub, kafka.TopicSitePublished),
	)
	res, err := p.Publish(context.Background(), NewMemorySink())
	require.NoError(t, err)
	assert.Equal(t, 30, res.Pages)

	assert.Equal(t, "prerender", locks.name)
	assert.Equal(t, time.Minute, locks.ttl)
	assert.True(t, lock.released)

	assert.Equal(t, []string{redis.PagePrefix}, cache.purged)
	assert.Len(t, cache.items, 30, "home page is not cached")
	page, ok := cache.items[redis.PageKey("/compare/0.5-round-vs-0.75-round")].(redis.Page)
	require.True(t, ok)
	assert.Equal(t, 200, page.Status)
	assert.Contains(t, cache.items, redis.PageKey("/sitemap.xml"))

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, kafka.TopicSitePublished, pub.msgs[0].Topic)
	var payload kafka.SitePublishedPayload
	_, err = kafka.DecodeEnvelope(pub.msgs[0].Value, &payload)
	require.NoError(t, err)
	assert.Equal(t, kafka.SitePublishedPayload{RunID: "run-1", Pages: 30, SitemapKey: SitemapKey, PublishedAt: fixedNow}, payload)
}

func TestPublish_Locked(t *testing.T) {
	p := newPipeline(WithLocks(&fakeLocks{lock: &fakeLock{}}, time.Minute))
	sink := NewMemorySink()

	_, err := p.Publish(context.Background(), sink)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodePrerenderLocked))
	assert.Zero(t, sink.Len())
}

func TestPublish_CacheFailureIsNotFatal(t *testing.T) {
	p := newPipeline(WithCache(&fakeCache{err: errors.New("redis down")}, time.Hour))
	res, err := p.Publish(context.Background(), NewMemorySink())
	require.NoError(t, err)
	assert.Equal(t, 30, res.Pages)
}

func TestPublish_PurgeFailureSkipsWarm(t *testing.T) {
	cache := &fakeCache{purgeErr: errors.New("redis down")}
	p := newPipeline(WithCache(cache, time.Hour))
	res, err := p.Publish(context.Background(), NewMemorySink())
	require.NoError(t, err)
	assert.Equal(t, 30, res.Pages)
	assert.Empty(t, cache.items)
}

func TestPublish_EventFailure(t *testing.T) {
	p := newPipeline(WithPublisher(&capturePublisher{err: errors.New("broker down")}, kafka.TopicSitePublished))
	res, err := p.Publish(context.Background(), NewMemorySink())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodePublishFailed))
	require.NotNil(t, res)
	assert.Equal(t, "run-1", res.RunID)
}
