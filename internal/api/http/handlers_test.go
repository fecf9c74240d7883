package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/rubico-playground/internal/bridge"
	"github.com/GriffinCanCode/rubico-playground/internal/document"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rubico-playground/internal/playground"
	"github.com/GriffinCanCode/rubico-playground/internal/sandbox"
	"github.com/GriffinCanCode/rubico-playground/internal/shared/id"
	"github.com/GriffinCanCode/rubico-playground/internal/shared/utils"
)

func setupTestRouter(t *testing.T, executor Executor) (*gin.Engine, *monitoring.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetrics()
	h := NewHandlers(nil, executor, metrics, nil)

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/metrics/json", h.Metrics)
	api := router.Group("/api")
	api.GET("/library", h.Library)
	api.POST("/documents", h.Document)
	api.POST("/runs", h.Run)
	api.POST("/evaluate", h.Evaluate)
	return router, metrics
}

func newPool(t *testing.T, timeout time.Duration) *sandbox.Pool {
	t.Helper()
	base := sandbox.DefaultConfig()
	base.Timeout = timeout
	pool, err := sandbox.NewPool(playground.SandboxConfig(base, document.DefaultLibraryURL), 2)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func post(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	router, _ := setupTestRouter(t, newPool(t, time.Second))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string            `json:"status"`
		Pool   sandbox.PoolStats `json:"pool"`
	}
	decode(t, w, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 2, body.Pool.Size)
}

func TestLibrary(t *testing.T) {
	router, _ := setupTestRouter(t, newPool(t, time.Second))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/library", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body LibraryResponse
	decode(t, w, &body)
	assert.Equal(t, document.DefaultLibraryURL, body.URL)
	assert.Equal(t, document.DefaultOutputID, body.OutputID)
	assert.Equal(t, document.Names(), body.Names)
	assert.Contains(t, body.Names, "switchCase")
}

func TestDocument(t *testing.T) {
	router, _ := setupTestRouter(t, newPool(t, time.Second))

	w := post(t, router, "/api/documents", SnippetRequest{Snippet: "console.log(1)"})
	require.Equal(t, http.StatusOK, w.Code)

	var body DocumentResponse
	decode(t, w, &body)
	assert.Equal(t, document.Assemble("console.log(1)"), body.Document)
	assert.Equal(t, bridge.Markup(body.Document), body.Markup)
	assert.True(t, strings.HasPrefix(body.Reference, bridge.Prefix))
	assert.Equal(t, bridge.Reference(body.Reference).Digest(), body.Digest)
}

func TestRun(t *testing.T) {
	router, metrics := setupTestRouter(t, newPool(t, time.Second))

	tests := []struct {
		name    string
		snippet string
		want    []string
	}{
		{name: "four lines", snippet: strings.Repeat("console.log('hey')\n", 4), want: []string{"hey", "hey", "hey", "hey"}},
		{name: "library", snippet: "console.log(map(x => x * 2)([1, 2]))", want: []string{"[2, 4]"}},
		{name: "thrown error", snippet: "throw new Error('boom')", want: []string{"Error: boom"}},
		{name: "empty", snippet: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, router, "/api/runs", SnippetRequest{Snippet: tt.snippet})
			require.Equal(t, http.StatusOK, w.Code)

			var body RunResponse
			decode(t, w, &body)
			assert.True(t, id.IsValid(body.RunID))
			assert.Equal(t, monitoring.StatusOK, body.Status)
			assert.Equal(t, tt.want, body.Output)
			assert.Empty(t, body.Errors)
			assert.Empty(t, body.Error)
			assert.Equal(t, bridge.ToRenderableReference(document.Assemble(tt.snippet)).String(), body.Reference)
		})
	}

	assert.Equal(t, int64(len(tests)), metrics.Snapshot().TotalRuns)
}

func TestRunTimeout(t *testing.T) {
	router, _ := setupTestRouter(t, newPool(t, 100*time.Millisecond))

	w := post(t, router, "/api/runs", SnippetRequest{Snippet: "console.log('start'); while (true) {}"})
	require.Equal(t, http.StatusOK, w.Code)

	var body RunResponse
	decode(t, w, &body)
	assert.Equal(t, monitoring.StatusAborted, body.Status)
	assert.Equal(t, sandbox.ErrExecutionTimeout.Error(), body.Error)
	assert.Equal(t, []string{"start"}, body.Output)
}

func TestEvaluate(t *testing.T) {
	router, _ := setupTestRouter(t, newPool(t, time.Second))

	t.Run("value and console", func(t *testing.T) {
		w := post(t, router, "/api/evaluate", SnippetRequest{Snippet: "console.warn('careful', [1]); ({ a: 1 })"})
		require.Equal(t, http.StatusOK, w.Code)

		var body EvaluateResponse
		decode(t, w, &body)
		assert.Equal(t, "{ a: 1 }", body.Value)
		assert.Equal(t, []ConsoleEntry{{Level: "warn", Message: "careful [1]"}}, body.Console)
		assert.Empty(t, body.Error)
	})

	t.Run("thrown error", func(t *testing.T) {
		w := post(t, router, "/api/evaluate", SnippetRequest{Snippet: "console.log('before'); throw new Error('boom')"})
		require.Equal(t, http.StatusOK, w.Code)

		var body EvaluateResponse
		decode(t, w, &body)
		assert.Contains(t, body.Error, "boom")
		assert.Equal(t, []ConsoleEntry{{Level: "log", Message: "before"}}, body.Console)
	})
}

func TestSnippetValidation(t *testing.T) {
	router, _ := setupTestRouter(t, newPool(t, time.Second))

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{name: "malformed json", body: "{", wantStatus: http.StatusBadRequest},
		{name: "wrong type", body: `{"snippet": 1}`, wantStatus: http.StatusBadRequest},
		{name: "too long", body: SnippetRequest{Snippet: strings.Repeat("a", utils.MaxSnippetSize+1)}, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "body too large", body: SnippetRequest{Snippet: strings.Repeat("a", utils.MaxMessageSize)}, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/api/documents", "/api/runs", "/api/evaluate"} {
				w := post(t, router, path, tt.body)
				assert.Equal(t, tt.wantStatus, w.Code, path)
			}
		})
	}
}

type busyExecutor struct{}

func (busyExecutor) Load(context.Context, *sandbox.Page) (*sandbox.Result, error) {
	return nil, sandbox.ErrTimeout
}

func (busyExecutor) Execute(context.Context, string, *sandbox.DOM) (*sandbox.Result, error) {
	return nil, sandbox.ErrTimeout
}

func (busyExecutor) Stats() sandbox.PoolStats {
	return sandbox.PoolStats{Size: 1, InUse: 1}
}

func TestExhaustedPool(t *testing.T) {
	router, metrics := setupTestRouter(t, busyExecutor{})

	for _, path := range []string{"/api/runs", "/api/evaluate"} {
		w := post(t, router, path, SnippetRequest{Snippet: "1"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
	assert.Equal(t, int64(2), metrics.Snapshot().TotalRuns)
}

func TestMetricsJSON(t *testing.T) {
	router, _ := setupTestRouter(t, newPool(t, time.Second))
	post(t, router, "/api/runs", SnippetRequest{Snippet: "console.log(1)"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics/json", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body MetricsResponse
	decode(t, w, &body)
	assert.Equal(t, int64(1), body.Summary.TotalRuns)
	assert.Equal(t, 2, body.Pool.Size)
	assert.Equal(t, 0, body.Pool.InUse)
}
