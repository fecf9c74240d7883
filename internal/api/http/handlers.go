package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/rubico-playground/internal/bridge"
	"github.com/GriffinCanCode/rubico-playground/internal/document"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rubico-playground/internal/playground"
	"github.com/GriffinCanCode/rubico-playground/internal/sandbox"
	"github.com/GriffinCanCode/rubico-playground/internal/shared/id"
	"github.com/GriffinCanCode/rubico-playground/internal/shared/utils"
)

// Executor runs snippets and documents. *sandbox.Pool satisfies it.
type Executor interface {
	playground.Loader
	Execute(ctx context.Context, script string, dom *sandbox.DOM) (*sandbox.Result, error)
	Stats() sandbox.PoolStats
}

// Handlers contains all HTTP handlers
type Handlers struct {
	assembler *document.Assembler
	executor  Executor
	metrics   *monitoring.Metrics
	logger    *logging.Logger
	validator *utils.SnippetValidator
}

// NewHandlers creates a new handler set. A nil logger discards output and
// nil metrics are replaced by a private collector.
func NewHandlers(
	assembler *document.Assembler,
	executor Executor,
	metrics *monitoring.Metrics,
	logger *logging.Logger,
) *Handlers {
	if assembler == nil {
		assembler = document.New(document.DefaultOptions())
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		assembler: assembler,
		executor:  executor,
		metrics:   metrics,
		logger:    logger.Component("api"),
		validator: utils.DefaultSnippetValidator(),
	}
}

// Health handles health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "rubico-playground",
		"pool":    h.executor.Stats(),
	})
}

// Library describes the bound function surface
func (h *Handlers) Library(c *gin.Context) {
	opts := h.assembler.Options()
	c.JSON(http.StatusOK, LibraryResponse{
		URL:      opts.LibraryURL,
		Binding:  document.LibraryBinding,
		OutputID: opts.OutputID,
		Names:    document.Names(),
	})
}

// Document assembles and bridges a snippet without running it
func (h *Handlers) Document(c *gin.Context) {
	snippet, ok := h.bindSnippet(c)
	if !ok {
		return
	}

	doc := h.assembler.Assemble(snippet)
	ref := bridge.ToRenderableReference(doc)
	h.metrics.RecordDocument(len(doc))

	c.JSON(http.StatusOK, DocumentResponse{
		Document:  doc,
		Markup:    bridge.Markup(doc),
		Reference: ref.String(),
		Digest:    ref.Digest(),
	})
}

// Run assembles a snippet, bridges it and loads the reference in a pooled
// sandbox
func (h *Handlers) Run(c *gin.Context) {
	snippet, ok := h.bindSnippet(c)
	if !ok {
		return
	}

	runID := id.NewRunID()
	logger := h.logger.Run(runID.String())

	doc := h.assembler.Assemble(snippet)
	ref := bridge.ToRenderableReference(doc)
	h.metrics.RecordDocument(len(doc))

	timer := monitoring.NewTimer(h.metrics, "api")
	result, err := playground.LoadReference(c.Request.Context(), h.executor, ref)
	status := playground.Status(result, err)
	h.updatePool()

	if isUnavailable(err) {
		timer.Stop(monitoring.StatusRejected, 0, 0)
		logger.Warn("run rejected", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		timer.Stop(status, 0, 0)
		logger.Error("run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	duration := timer.Stop(status, len(result.Output), len(result.Errors))
	logger.Info("run finished",
		zap.String("status", status),
		logging.Digest(ref.Digest()),
		zap.Int("lines", len(result.Output)),
		zap.Duration("duration", duration),
	)

	resp := RunResponse{
		RunID:      runID.String(),
		Reference:  ref.String(),
		Digest:     ref.Digest(),
		Status:     status,
		Output:     orEmpty(result.Output),
		Errors:     scriptErrors(result.Errors),
		DurationMs: duration.Milliseconds(),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// Evaluate runs a snippet as a plain script and reports its console output
// and completion value
func (h *Handlers) Evaluate(c *gin.Context) {
	snippet, ok := h.bindSnippet(c)
	if !ok {
		return
	}

	timer := monitoring.NewTimer(h.metrics, "evaluate")
	result, err := h.executor.Execute(c.Request.Context(), snippet, nil)
	h.updatePool()

	if isUnavailable(err) {
		timer.Stop(monitoring.StatusRejected, 0, 0)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	resp := EvaluateResponse{Console: []ConsoleEntry{}}
	if result != nil {
		resp.Console = consoleEntries(result.Console)
		resp.Value = result.Display
	}
	if err != nil {
		resp.Error = err.Error()
	}
	resp.DurationMs = timer.Stop(evaluateStatus(err), len(resp.Console), 0).Milliseconds()
	c.JSON(http.StatusOK, resp)
}

// Metrics returns the JSON metrics summary
func (h *Handlers) Metrics(c *gin.Context) {
	stats := h.executor.Stats()
	h.metrics.SetPool(stats.Size, stats.InUse)
	c.JSON(http.StatusOK, MetricsResponse{
		Summary: h.metrics.Snapshot(),
		Pool:    stats,
	})
}

func (h *Handlers) bindSnippet(c *gin.Context) (string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxMessageSize)

	var req SnippetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return "", false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}

	if err := h.validator.Validate(req.Snippet); err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, utils.ErrSnippetTooLong) {
			code = http.StatusRequestEntityTooLarge
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return "", false
	}
	return req.Snippet, true
}

func (h *Handlers) updatePool() {
	stats := h.executor.Stats()
	h.metrics.SetPool(stats.Size, stats.InUse)
}

func isUnavailable(err error) bool {
	return errors.Is(err, sandbox.ErrTimeout) || errors.Is(err, sandbox.ErrPoolClosed)
}

func evaluateStatus(err error) string {
	switch {
	case err == nil:
		return monitoring.StatusOK
	case errors.Is(err, sandbox.ErrExecutionTimeout):
		return monitoring.StatusAborted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return monitoring.StatusCancelled
	}
	return monitoring.StatusFailed
}
