package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusOK, resp.Code)

	health := decodeData[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
}

func TestHealthCheck_DatabaseClosed(t *testing.T) {
	ts := setupTestServer(t)
	_ = ts.store.Close()

	resp := ts.api.Get("/health")

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	env := decodeEnvelope(t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Contains(t, string(env.Data), "unhealthy")
}
