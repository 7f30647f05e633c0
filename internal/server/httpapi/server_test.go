package httpapi

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(Options{}, logging.Nop{}, &stubUsers{}, &stubAssets{}, nil)

	assert.Equal(t, int64(defaultMaxBodyBytes), s.maxBodyBytes)
	assert.Equal(t, defaultShutdownTimeout, s.shutdownTimeout)
	assert.Equal(t, prometheus.DefaultGatherer, s.gatherer)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "2024-03-01T12:00:00Z", body["timestamp"])
}

func TestAPIIndex(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, apiVersion, body["version"])
	endpoints := body["endpoints"].(map[string]any)
	assert.Equal(t, "/api/images", endpoints["images"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "gallery_test_total", Help: "test"})
	h.registry.MustRegister(c)
	c.Add(3)

	rec := h.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gallery_test_total 3")
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/images", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	h := newHarness(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.server.Serve(ctx, l) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + l.Addr().String() + "/health")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.True(t, strings.Contains(string(b), `"status":"OK"`))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddress(t *testing.T) {
	s := NewServer(Options{Address: "bad-address:-1"}, logging.Nop{}, &stubUsers{}, &stubAssets{}, nil)
	require.Error(t, s.Run(context.Background()))
}
