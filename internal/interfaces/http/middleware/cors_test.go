package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS_AllowList(t *testing.T) {
	r := newEngine(CORS("/api/", []string{"https://partner.example"}))

	w := do(r, http.MethodGet, "/api/v1/slug", http.Header{"Origin": {"https://partner.example"}})
	assert.Equal(t, "https://partner.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/api/v1/slug", http.Header{"Origin": {"https://evil.example"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/", http.Header{"Origin": {"https://evil.example"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AnyOrigin(t *testing.T) {
	r := newEngine(CORS("/api/", nil))

	w := do(r, http.MethodOptions, "/api/v1/slug", http.Header{
		"Origin":                        {"https://anyone.example"},
		"Access-Control-Request-Method": {http.MethodGet},
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
}
