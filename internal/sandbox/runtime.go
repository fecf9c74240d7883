package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/rubico-playground/internal/format"
)

var (
	ErrExecutionTimeout = errors.New("execution timeout exceeded")
	ErrRuntimeClosed    = errors.New("sandbox runtime is closed")
	ErrExternalScript   = errors.New("external classic scripts are not supported")
	ErrScriptPanic      = errors.New("sandbox panicked while running script")
)

// Runtime wraps goja VM with security controls
type Runtime struct {
	vm         *goja.Runtime
	classifier *format.Classifier
	config     Config
	mu         sync.Mutex

	// Console output
	console   []LogEntry
	consoleMu sync.Mutex
}

// New creates a new sandboxed runtime
func New(config Config) (*Runtime, error) {
	r := &Runtime{
		config:  config,
		console: []LogEntry{},
	}
	if err := r.init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runtime) init() error {
	vm := goja.New()
	if r.config.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(r.config.MaxCallStackSize)
	}

	r.vm = vm
	r.classifier = format.NewClassifier(vm)
	return r.setupGlobals()
}

// Execute evaluates script directly and returns its completion value
func (r *Runtime) Execute(ctx context.Context, script string, dom *DOM) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, ErrRuntimeClosed
	}

	start := time.Now()
	result := &Result{}
	r.clearConsole()

	if dom != nil && r.config.EnableDOM {
		if err := r.injectDOM(dom); err != nil {
			return nil, fmt.Errorf("failed to inject DOM: %w", err)
		}
	}

	var val goja.Value
	err := r.guard(ctx, func() error {
		var runErr error
		val, runErr = r.vm.RunString(script)
		return runErr
	})

	result.Duration = time.Since(start)
	result.Console = r.consoleSnapshot()
	if dom != nil {
		result.DOMChanges = dom.GetChanges()
		result.Output = dom.Lines()
	}

	if err != nil {
		result.Error = err
		return result, err
	}

	result.Value = r.exportValue(val)
	if val != nil {
		result.Display = r.Format(val)
	}
	return result, nil
}

// Load runs the scripts of page the way a browser frame would: classic
// scripts in document order, then module scripts. Script errors are recorded
// in the result; only timeouts and cancellation abort the load.
func (r *Runtime) Load(ctx context.Context, page *Page) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, ErrRuntimeClosed
	}

	start := time.Now()
	result := &Result{}
	r.clearConsole()

	if r.config.EnableDOM {
		if err := r.injectDOM(page.DOM); err != nil {
			return nil, fmt.Errorf("failed to inject DOM: %w", err)
		}
	}

	link := newLinker(r.vm, r.config.Modules)
	err := r.guard(ctx, func() error {
		for _, i := range page.Ordered() {
			script := page.Scripts[i]
			if err := r.runScript(link, i, script); err != nil {
				if isInterrupt(err) {
					return err
				}
				result.Errors = append(result.Errors, ScriptError{Script: i, Message: err.Error()})
			}
		}
		return nil
	})

	result.Duration = time.Since(start)
	result.Console = r.consoleSnapshot()
	result.DOMChanges = page.DOM.GetChanges()
	result.Output = page.DOM.Lines()

	if err != nil {
		result.Error = err
		return result, err
	}
	return result, nil
}

func (r *Runtime) runScript(link *linker, index int, script Script) error {
	if script.Src != "" && !script.Module {
		return fmt.Errorf("%w: %s", ErrExternalScript, script.Src)
	}

	source := script.Text
	if script.Module {
		if script.Src != "" {
			source = fmt.Sprintf("import * as __external from %q", script.Src)
		}
		linked, err := link.link(source)
		if err != nil {
			return err
		}
		source = linked
	}

	_, err := r.vm.RunScript(fmt.Sprintf("script-%d.js", index), source)
	return err
}

// guard runs fn while a watchdog interrupts the VM on timeout or context
// cancellation. The abort reason is returned in place of goja's
// InterruptedError.
func (r *Runtime) guard(ctx context.Context, fn func() error) error {
	var timeout <-chan time.Time
	if r.config.Timeout > 0 {
		timer := time.NewTimer(r.config.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-timeout:
			r.vm.Interrupt(ErrExecutionTimeout)
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	err, panicked := protect(fn)
	close(done)
	<-exited

	if panicked {
		// The VM was unwound mid-instruction and cannot be reused
		if initErr := r.init(); initErr != nil {
			return errors.Join(err, initErr)
		}
		return err
	}

	// A watchdog that fired after fn returned must not leak into the next run
	r.vm.ClearInterrupt()

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if reason, ok := interrupted.Value().(error); ok {
			return reason
		}
	}
	return err
}

// protect runs fn, turning a Go panic that escaped the VM into an error
func protect(fn func() error) (err error, panicked bool) {
	defer func() {
		if p := recover(); p != nil {
			err, panicked = fmt.Errorf("%w: %v", ErrScriptPanic, p), true
		}
	}()
	return fn(), false
}

func isInterrupt(err error) bool {
	var interrupted *goja.InterruptedError
	return errors.As(err, &interrupted)
}

// setupGlobals configures global objects and security
func (r *Runtime) setupGlobals() error {
	// Remove dangerous globals
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	if err := r.vm.Set("window", r.vm.GlobalObject()); err != nil {
		return err
	}

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error", "debug"} {
			if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
				return err
			}
		}
		if err := r.vm.Set("console", console); err != nil {
			return err
		}
	}

	// Timers are no-ops: a load ends when its scripts return
	noop := func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	}
	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval"} {
		if err := r.vm.Set(name, noop); err != nil {
			return err
		}
	}

	return nil
}

// makeConsoleFunc creates a console function that formats its arguments
// like the sandbox output surface does
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		args := make([]format.Value, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = r.classifier.Value(arg)
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: format.Line(args...),
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

func (r *Runtime) clearConsole() {
	r.consoleMu.Lock()
	r.console = []LogEntry{}
	r.consoleMu.Unlock()
}

func (r *Runtime) consoleSnapshot() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	return append([]LogEntry{}, r.console...)
}

// exportValue converts goja value to Go value
func (r *Runtime) exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Format renders val with the console formatting rules of this runtime
func (r *Runtime) Format(val goja.Value) string {
	return format.Format(r.classifier.Value(val), 0)
}

// Reset replaces the VM, discarding all global state
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.console = []LogEntry{}
	return r.init()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.classifier = nil
	r.console = nil
	return nil
}
