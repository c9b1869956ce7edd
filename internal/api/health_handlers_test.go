package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Healthy(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decode[HealthResponse](t, resp)
	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data.Status)
	assert.Equal(t, "healthy", envelope.Data.Components["store"].Status)
}

func TestHealthCheck_StoreClosed(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.store.Close())

	out, err := ts.handleHealthCheck(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "unhealthy", out.Body.Status)
	assert.Equal(t, "store unreachable", out.Body.Components["store"].Message)
}

func TestHealthCheck_NoStore(t *testing.T) {
	s := &Server{}

	out, err := s.handleHealthCheck(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "degraded", out.Body.Status)
}
