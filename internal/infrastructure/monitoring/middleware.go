package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection. Requests are
// labelled by route template so path parameters do not explode cardinality.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(c.Request.Method, path, status, time.Since(start))
	}
}

// Timer measures a run
type Timer struct {
	start   time.Time
	metrics *Metrics
	source  string
}

// NewTimer creates a new timer for runs from source
func NewTimer(metrics *Metrics, source string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		source:  source,
	}
}

// Stop records the run with its outcome
func (t *Timer) Stop(status string, lines, scriptErrors int) time.Duration {
	duration := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.RecordRun(t.source, status, duration, lines, scriptErrors)
	}
	return duration
}
