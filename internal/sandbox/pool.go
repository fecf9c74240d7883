package sandbox

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrPoolClosed = errors.New("sandbox pool is closed")
	ErrTimeout    = errors.New("sandbox acquisition timeout")
)

// DefaultAcquireTimeout bounds how long Acquire waits for a free runtime
const DefaultAcquireTimeout = 5 * time.Second

// Pool manages a pool of reusable runtimes. A runtime is reset before it
// returns to the pool, so no global state crosses from one run to the next.
type Pool struct {
	config         Config
	sandboxes      chan *Runtime
	size           int
	acquireTimeout time.Duration
	mu             sync.RWMutex
	closed         bool
}

// PoolStats is a snapshot of pool utilisation
type PoolStats struct {
	Size      int  `json:"size"`
	Available int  `json:"available"`
	InUse     int  `json:"in_use"`
	Closed    bool `json:"closed"`
}

// NewPool creates a sandbox pool
func NewPool(config Config, size int) (*Pool, error) {
	if size <= 0 {
		size = 4
	}

	pool := &Pool{
		config:         config,
		sandboxes:      make(chan *Runtime, size),
		size:           size,
		acquireTimeout: DefaultAcquireTimeout,
	}

	for i := 0; i < size; i++ {
		sandbox, err := New(config)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.sandboxes <- sandbox
	}

	return pool, nil
}

// SetAcquireTimeout changes the Acquire wait limit; zero waits for the context only
func (p *Pool) SetAcquireTimeout(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquireTimeout = d
}

// Acquire gets a runtime from the pool
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrPoolClosed
	}
	timeout := p.acquireTimeout
	p.mu.RUnlock()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case sandbox, ok := <-p.sandboxes:
		if !ok {
			return nil, ErrPoolClosed
		}
		return sandbox, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-expired:
		return nil, ErrTimeout
	}
}

// Release resets sandbox and returns it to the pool
func (p *Pool) Release(sandbox *Runtime) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return sandbox.Close()
	}

	if err := sandbox.Reset(); err != nil {
		sandbox.Close()
		if replacement, newErr := New(p.config); newErr == nil {
			p.sandboxes <- replacement
		}
		return err
	}

	select {
	case p.sandboxes <- sandbox:
		return nil
	default:
		return sandbox.Close()
	}
}

// Execute evaluates script on a pooled runtime
func (p *Pool) Execute(ctx context.Context, script string, dom *DOM) (*Result, error) {
	sandbox, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(sandbox)

	return sandbox.Execute(ctx, script, dom)
}

// Load loads page on a pooled runtime
func (p *Pool) Load(ctx context.Context, page *Page) (*Result, error) {
	sandbox, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(sandbox)

	return sandbox.Load(ctx, page)
}

// Close closes the pool and all idle runtimes
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.sandboxes)

	for sandbox := range p.sandboxes {
		sandbox.Close()
	}

	return nil
}

// Stats returns pool statistics
func (p *Pool) Stats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	available := len(p.sandboxes)
	return PoolStats{
		Size:      p.size,
		Available: available,
		InUse:     p.size - available,
		Closed:    p.closed,
	}
}
