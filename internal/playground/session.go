package playground

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/rubico-playground/internal/bridge"
	"github.com/GriffinCanCode/rubico-playground/internal/document"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rubico-playground/internal/shared/id"
)

// Run describes one triggered run
type Run struct {
	ID           id.RunID
	Reference    bridge.Reference
	DocumentSize int
}

// Session binds an editor to a surface
type Session struct {
	ID id.SessionID

	editor    Editor
	surface   Surface
	assembler *document.Assembler
	logger    *logging.Logger
	metrics   *monitoring.Metrics

	mu        sync.Mutex
	reference bridge.Reference
	runs      int
}

// Option configures a Session
type Option func(*Session)

// WithAssembler sets the document assembler
func WithAssembler(a *document.Assembler) Option {
	return func(s *Session) { s.assembler = a }
}

// WithLogger sets the session logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithMetrics records document sizes
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(s *Session) { s.metrics = metrics }
}

// NewSession creates a session reading from editor and mounting on surface
func NewSession(editor Editor, surface Surface, opts ...Option) *Session {
	s := &Session{
		ID:        id.NewSessionID(),
		editor:    editor,
		surface:   surface,
		assembler: document.New(document.DefaultOptions()),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", s.ID.String()))
	return s
}

// Run reads the editor, builds a fresh reference, replaces the held one and
// mounts it. An editor read error leaves the held reference untouched.
func (s *Session) Run() (Run, error) {
	snippet, err := s.editor.Text()
	if err != nil {
		s.logger.Warn("failed to read editor", zap.Error(err))
		return Run{}, err
	}

	doc := s.assembler.Assemble(snippet)
	ref := bridge.ToRenderableReference(doc)
	run := Run{
		ID:           id.NewRunID(),
		Reference:    ref,
		DocumentSize: len(doc),
	}

	s.mu.Lock()
	s.reference = ref
	s.runs++
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordDocument(len(doc))
	}
	s.logger.Run(run.ID.String()).Info("run triggered",
		zap.Int("snippet_bytes", len(snippet)),
		zap.Int("document_bytes", len(doc)),
		logging.Digest(ref.Digest()),
	)

	s.surface.Mount(ref)
	return run, nil
}

// Reference returns the currently held reference
func (s *Session) Reference() bridge.Reference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reference
}

// Runs returns how many runs the session has triggered
func (s *Session) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}
