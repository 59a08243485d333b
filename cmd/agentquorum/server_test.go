package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/agentquorum/config"
	"github.com/BaSui01/agentquorum/internal/metrics"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.HTTPPort = 0
	cfg.Server.MetricsPort = 0
	cfg.Server.PoolFile = writePool(t)

	srv := NewServer(cfg, zap.NewNop())
	srv.metricsCollector = metrics.NewCollectorWithRegisterer("agentquorum", prometheus.NewRegistry(), zap.NewNop())
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Shutdown)
	return srv
}

func TestServer_Lifecycle(t *testing.T) {
	srv := newTestServer(t)
	base := "http://" + srv.servers.Addr("api")

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = http.Get(base + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := json.Marshal(map[string]any{"query": "a mild fever", "strategy": "parallel"})
	resp, err = http.Post(base+"/api/v1/coordinate", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	records, err := srv.history.ListRecords(t.Context(), "parallel", 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	resp, err = http.Get("http://" + srv.servers.Addr("metrics") + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ShutdownIdempotent(t *testing.T) {
	srv := newTestServer(t)
	srv.Shutdown()
	assert.False(t, srv.servers.Running())
	srv.Shutdown()
}
