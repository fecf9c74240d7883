package playground

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/logging"
)

// DefaultDebounce groups the burst of events one save produces
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports writes to files matching a set of glob patterns. Patterns
// use doublestar syntax, so "snippets/**/*.js" matches recursively.
type Watcher struct {
	watcher  *fsnotify.Watcher
	patterns []string
	debounce time.Duration
	logger   *logging.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher expands patterns and watches the directories of every match.
// Watching directories rather than files keeps working across editors that
// save by renaming a temporary file.
func NewWatcher(logger *logging.Logger, patterns ...string) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		debounce: DefaultDebounce,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
	}

	dirs := make(map[string]bool)
	for _, pattern := range patterns {
		pattern = filepath.Clean(pattern)
		if !doublestar.ValidatePathPattern(pattern) {
			fw.Close()
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		w.patterns = append(w.patterns, pattern)

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
			dirs[filepath.FromSlash(base)] = true
		}
		for _, match := range matches {
			dirs[filepath.Dir(match)] = true
		}
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logger.Debug("watching directory", zap.String("dir", dir))
	}

	return w, nil
}

// SetDebounce changes the debounce delay; zero reports every event
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Matches reports whether path matches one of the patterns
func (w *Watcher) Matches(path string) bool {
	path = filepath.Clean(path)
	for _, pattern := range w.patterns {
		if ok, _ := doublestar.PathMatch(pattern, path); ok {
			return true
		}
	}
	return false
}

// Run calls onChange with the path of every written file until ctx ends
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.Matches(event.Name) {
				continue
			}
			w.schedule(event.Name, onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule(path string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce <= 0 {
		go onChange(path)
		return
	}
	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		onChange(path)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	w.stopTimers()
	return w.watcher.Close()
}

// Watch re-runs session each time a file matching patterns is written
func Watch(ctx context.Context, session *Session, patterns []string, logger *logging.Logger) error {
	w, err := NewWatcher(logger, patterns...)
	if err != nil {
		return err
	}
	defer w.Close()

	return w.Run(ctx, func(path string) {
		if _, err := session.Run(); err != nil {
			w.logger.Warn("re-run failed", zap.String("path", path), zap.Error(err))
			return
		}
		w.logger.Info("re-ran snippet", zap.String("path", path), zap.Int("runs", session.Runs()))
	})
}
