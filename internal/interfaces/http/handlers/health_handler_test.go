package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(name string) HealthChecker {
	return CheckerFunc{ComponentName: name, Fn: func(context.Context) error { return nil }}
}

func failing(name string) HealthChecker {
	return CheckerFunc{ComponentName: name, Fn: func(context.Context) error { return errors.New("dial tcp: connection refused") }}
}

func newHealthEngine(h *HealthHandler) *gin.Engine {
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func TestHealth_Liveness(t *testing.T) {
	w := get(newHealthEngine(NewHealthHandler("1.2.3", nil, failing("redis"))), "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var resp LivenessResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHealth_ReadinessNoCheckers(t *testing.T) {
	w := get(newHealthEngine(NewHealthHandler("dev", nil)), "/readyz")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ReadinessResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "ready", resp.Status)
	assert.Empty(t, resp.Components)
}

func TestHealth_Readiness(t *testing.T) {
	m, c := newMetrics(t)
	w := get(newHealthEngine(NewHealthHandler("dev", m, healthy("redis"), healthy("minio"))), "/readyz")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ReadinessResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "healthy", resp.Components["redis"].Status)
	assert.Equal(t, "healthy", resp.Components["minio"].Status)
	assert.Contains(t, scrape(t, c), `test_health_check_status{component="redis"} 1`)
}

func TestHealth_ReadinessFailure(t *testing.T) {
	m, c := newMetrics(t)
	w := get(newHealthEngine(NewHealthHandler("dev", m, healthy("redis"), failing("minio"))), "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ReadinessResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["minio"].Status)
	assert.Contains(t, resp.Components["minio"].Error, "connection refused")
	assert.Contains(t, scrape(t, c), `test_health_check_status{component="minio"} 0`)
}

func TestHealth_Detailed(t *testing.T) {
	w := get(newHealthEngine(NewHealthHandler("1.2.3", nil, failing("kafka"))), "/healthz/detail")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ReadinessResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.NotEmpty(t, resp.Uptime)
}
