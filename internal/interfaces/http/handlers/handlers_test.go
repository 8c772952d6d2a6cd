package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaratCompare/internal/application/content"
	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/internal/domain/diamond"
	"github.com/turtacn/CaratCompare/internal/infrastructure/database/redis"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/prometheus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSite = content.Site{
	Name:         "Carat Compare",
	BaseURL:      "https://www.caratcompare.co",
	AffiliateURL: "https://example.com/diamonds",
}

func testPages() *content.Pages {
	return content.NewPages(testSite, diamond.MustDefaultTable())
}

func fixedSelector() content.Selector {
	return content.FixedSelector(comparison.Of(1, diamond.Round, 1.5, diamond.Oval))
}

func newMetrics(t *testing.T) (*prometheus.AppMetrics, prometheus.MetricsCollector) {
	t.Helper()
	c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test"}, logging.NewNopLogger())
	require.NoError(t, err)
	return prometheus.NewAppMetrics(c), c
}

func scrape(t *testing.T, c prometheus.MetricsCollector) string {
	t.Helper()
	w := get(c.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// mapCache is an in-memory redis.Cache that round-trips values through JSON
// the way the Redis implementation does.
type mapCache struct {
	redis.Cache
	mu    sync.Mutex
	items map[string][]byte
	err   error
	loads int
}

func newMapCache() *mapCache {
	return &mapCache{items: map[string][]byte{}}
}

func (m *mapCache) GetOrSet(ctx context.Context, key string, dest interface{}, _ time.Duration, loader func(context.Context) (interface{}, error)) error {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return m.err
	}
	if raw, ok := m.items[key]; ok {
		m.mu.Unlock()
		return json.Unmarshal(raw, dest)
	}
	m.mu.Unlock()

	v, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[key] = raw
	m.loads++
	m.mu.Unlock()
	return json.Unmarshal(raw, dest)
}
