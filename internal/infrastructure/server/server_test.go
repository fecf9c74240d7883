package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/GriffinCanCode/rubico-playground/internal/api/http"
	"github.com/GriffinCanCode/rubico-playground/internal/api/middleware"
	"github.com/GriffinCanCode/rubico-playground/internal/api/ws"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/config"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/logging"
)

func newServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Sandbox.PoolSize = 1
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewServer(cfg, WithLogger(logging.NewNop()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestServerRoutes(t *testing.T) {
	s := newServer(t, nil)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{method: http.MethodGet, path: "/health", want: http.StatusOK},
		{method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{method: http.MethodGet, path: "/metrics/json", want: http.StatusOK},
		{method: http.MethodGet, path: "/api/library", want: http.StatusOK},
		{method: http.MethodPost, path: "/api/documents", body: `{"snippet":"1"}`, want: http.StatusOK},
		{method: http.MethodPost, path: "/api/runs", body: `{"snippet":"console.log(1)"}`, want: http.StatusOK},
		{method: http.MethodPost, path: "/api/evaluate", body: `{"snippet":"1 + 1"}`, want: http.StatusOK},
		{method: http.MethodGet, path: "/missing", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestServerRecordsMetrics(t *testing.T) {
	s := newServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", strings.NewReader(`{"snippet":"console.log('x')"}`))
	req.Header.Set("Content-Type", "application/json")
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `playground_runs_total{source="api",status="ok"} 1`)
	assert.Contains(t, body, "playground_http_requests_total")
}

func TestServerCompression(t *testing.T) {
	s := newServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"snippet":"console.log(1)"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	reader, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(reader)
	require.NoError(t, err)

	var doc api.DocumentResponse
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc.Document, "console.log(1)")
}

func TestServerWithoutCompression(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) { cfg.Server.Compress = false })

	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"snippet":"console.log(1)"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
}

func TestServerRateLimit(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 1
		cfg.RateLimit.Burst = 1
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"snippet":""}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health is not rate limited")
}

func TestServerGlobalRateLimit(t *testing.T) {
	s := newServer(t, func(cfg *config.Config) {
		cfg.RateLimit.GlobalRPS = 1
		cfg.RateLimit.GlobalBurst = 1
	})

	codes := make([]int, 0, 2)
	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader(`{"snippet":""}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes, "the global limit spans clients")
}

func TestServerStreamThroughCompression(t *testing.T) {
	s := newServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	header := http.Header{"Accept-Encoding": []string{"gzip"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	var welcome ws.Event
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, ws.TypeSystem, welcome.Type)

	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypeRun, Snippet: "console.log('streamed')"}))
	var output ws.Event
	require.NoError(t, conn.ReadJSON(&output))
	require.Equal(t, ws.TypeOutput, output.Type)
	assert.Equal(t, "streamed", *output.Line)
}
