package sandbox

import (
	"context"
	"time"

	"github.com/dop251/goja"
)

// ModuleFunc instantiates a module inside vm and returns its namespace
// object. The default export is read from the namespace's "default" property.
type ModuleFunc func(vm *goja.Runtime) (goja.Value, error)

// Config defines sandbox configuration
type Config struct {
	Timeout          time.Duration         // Execution timeout, zero for none
	MaxCallStackSize int                   // goja call stack limit, zero for the engine default
	EnableConsole    bool                  // Capture console.log/warn/error/info
	EnableDOM        bool                  // Expose the document proxy
	Modules          map[string]ModuleFunc // import specifier -> instantiator
}

// Result holds execution result
type Result struct {
	Value      interface{}   // Completion value (Execute only)
	Display    string        // Completion value in console form (Execute only)
	Output     []string      // Visible body text, one entry per line
	Console    []LogEntry    // Host console output
	Errors     []ScriptError // Uncaught script errors
	DOMChanges []DOMChange   // DOM modifications
	Duration   time.Duration // Execution time
	Error      error         // Abort reason (timeout, cancellation)
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, info, warn, error
	Message string    // Formatted message
	Time    time.Time // Timestamp
}

// ScriptError is an uncaught error raised by one script of a page
type ScriptError struct {
	Script  int    // Index into Page.Scripts
	Message string // Error text
}

// DOMChange represents a DOM modification
type DOMChange struct {
	Type     string      // append_child, set_text, set_attribute
	Selector string      // CSS selector of the target element
	Property string      // Property name
	Value    interface{} // New value
}

// Sandbox defines the JavaScript execution interface
type Sandbox interface {
	Execute(ctx context.Context, script string, dom *DOM) (*Result, error)
	Load(ctx context.Context, page *Page) (*Result, error)
	Reset() error
	Close() error
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:          5 * time.Second,
		MaxCallStackSize: 1024,
		EnableConsole:    true,
		EnableDOM:        true,
		Modules:          map[string]ModuleFunc{},
	}
}

// WithModule returns a copy of c with specifier resolving to fn
func (c Config) WithModule(specifier string, fn ModuleFunc) Config {
	modules := make(map[string]ModuleFunc, len(c.Modules)+1)
	for k, v := range c.Modules {
		modules[k] = v
	}
	modules[specifier] = fn
	c.Modules = modules
	return c
}
