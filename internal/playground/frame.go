package playground

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/rubico-playground/internal/bridge"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rubico-playground/internal/library"
	"github.com/GriffinCanCode/rubico-playground/internal/sandbox"
)

// Surface displays a Render Target Reference
type Surface interface {
	Mount(ref bridge.Reference)
}

// Loader runs a parsed page. Both *sandbox.Runtime and *sandbox.Pool
// satisfy it.
type Loader interface {
	Load(ctx context.Context, page *sandbox.Page) (*sandbox.Result, error)
}

// SandboxConfig returns base with the function library resolvable at
// libraryURL, so assembled documents run unchanged in-process
func SandboxConfig(base sandbox.Config, libraryURL string) sandbox.Config {
	return base.WithModule(libraryURL, library.Instantiate)
}

// LoadReference fetches ref and loads it with loader
func LoadReference(ctx context.Context, loader Loader, ref bridge.Reference) (*sandbox.Result, error) {
	page, err := sandbox.Open(ref.String())
	if err != nil {
		return nil, fmt.Errorf("failed to open reference: %w", err)
	}
	return loader.Load(ctx, page)
}

// Status classifies a load outcome for metrics
func Status(result *sandbox.Result, err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return monitoring.StatusCancelled
	case errors.Is(err, sandbox.ErrExecutionTimeout):
		return monitoring.StatusAborted
	case err != nil:
		return monitoring.StatusFailed
	case result != nil && len(result.Errors) > 0:
		return monitoring.StatusFailed
	}
	return monitoring.StatusOK
}

// Frame is an in-process Surface. Each mounted reference loads
// asynchronously in its own runtime; the most recently finished load is the
// one Output reports.
type Frame struct {
	config  sandbox.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	onLoad  func(bridge.Reference, *sandbox.Result, error)

	mu      sync.RWMutex
	mounted bridge.Reference
	result  *sandbox.Result
	err     error

	wg sync.WaitGroup
}

// FrameOption configures a Frame
type FrameOption func(*Frame)

// WithFrameLogger sets the frame logger
func WithFrameLogger(logger *logging.Logger) FrameOption {
	return func(f *Frame) { f.logger = logger }
}

// WithFrameMetrics records every load
func WithFrameMetrics(metrics *monitoring.Metrics) FrameOption {
	return func(f *Frame) { f.metrics = metrics }
}

// OnLoad registers fn to run after every load finishes
func OnLoad(fn func(bridge.Reference, *sandbox.Result, error)) FrameOption {
	return func(f *Frame) { f.onLoad = fn }
}

// NewFrame creates a frame whose runtimes use config
func NewFrame(config sandbox.Config, opts ...FrameOption) *Frame {
	f := &Frame{
		config: config,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Mount starts loading ref and returns immediately
func (f *Frame) Mount(ref bridge.Reference) {
	f.mu.Lock()
	f.mounted = ref
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.load(ref)
	}()
}

func (f *Frame) load(ref bridge.Reference) {
	timer := monitoring.NewTimer(f.metrics, "frame")

	result, err := f.run(ref)

	lines, scriptErrors := 0, 0
	if result != nil {
		lines, scriptErrors = len(result.Output), len(result.Errors)
	}
	duration := timer.Stop(Status(result, err), lines, scriptErrors)

	logger := f.logger.With(logging.Digest(ref.Digest()))
	if err != nil {
		logger.Warn("load aborted", zap.Error(err), zap.Duration("duration", duration))
	} else {
		logger.Debug("load finished", zap.Int("lines", lines), zap.Int("script_errors", scriptErrors), zap.Duration("duration", duration))
	}

	f.mu.Lock()
	f.result, f.err = result, err
	f.mu.Unlock()

	if f.onLoad != nil {
		f.onLoad(ref, result, err)
	}
}

// run loads ref in a fresh runtime. A panic below it becomes the load error
// so a broken snippet cannot take the process down.
func (f *Frame) run(ref bridge.Reference) (result *sandbox.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			f.logger.Error("load panicked", logging.Digest(ref.Digest()), zap.Any("panic", p), zap.Stack("stack"))
			result, err = nil, fmt.Errorf("%w: %v", sandbox.ErrScriptPanic, p)
		}
	}()

	runtime, err := sandbox.New(f.config)
	if err != nil {
		return nil, err
	}
	defer runtime.Close()
	return LoadReference(context.Background(), runtime, ref)
}

// Wait blocks until every started load has finished
func (f *Frame) Wait() {
	f.wg.Wait()
}

// Mounted returns the most recently mounted reference
func (f *Frame) Mounted() bridge.Reference {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mounted
}

// Output returns the captured output of the last finished load
func (f *Frame) Output() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.result == nil {
		return []string{}
	}
	return append([]string{}, f.result.Output...)
}

// Result returns the last finished load and its abort reason
func (f *Frame) Result() (*sandbox.Result, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.result, f.err
}
