package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	l := NewKeyedLimiter(0.001, 2)
	r := newEngine(RateLimit(l))

	for i := 0; i < 2; i++ {
		w := do(r, http.MethodGet, "/api/v1/slug", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}
	w := do(r, http.MethodGet, "/api/v1/slug", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// A different client has its own bucket.
	w = do(r, http.MethodGet, "/api/v1/slug", http.Header{"X-Forwarded-For": {"10.0.0.9"}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestKeyedLimiter_Sweep(t *testing.T) {
	l := NewKeyedLimiter(1, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(time.Hour)
	l.Allow("b")

	assert.Equal(t, 1, l.Sweep(30*time.Minute))
	assert.Len(t, l.visitors, 1)
}
