package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolated(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestRecordRun(t *testing.T) {
	m := NewMetrics()

	m.RecordRun("http", StatusOK, 0, 4, 0)
	m.RecordRun("http", StatusAborted, 0, 0, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("http", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("http", StatusAborted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScriptErrors))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRuns)
	assert.Equal(t, int64(1), snap.FailedRuns)
}

func TestTimerWithoutMetrics(t *testing.T) {
	timer := NewTimer(nil, "cli")
	assert.NotPanics(t, func() { timer.Stop(StatusOK, 1, 0) })
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/items/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, int64(1), m.Snapshot().TotalErrors)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "playground_http_requests_total")
	assert.Contains(t, w.Body.String(), "playground_uptime_seconds")
}
