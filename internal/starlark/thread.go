package starlark

import (
	"log/slog"
	"sync"

	"go.starlark.net/starlark"
)

// DefaultStepLimit bounds the Starlark steps a single script run may take.
const DefaultStepLimit = 10_000_000

// ThreadPool hands out Starlark threads for ansatz script runs. Each run
// gets a fresh step budget, so a runaway loop is cancelled instead of
// hanging circuit generation. Script print output goes to the logger.
type ThreadPool struct {
	mu        sync.Mutex
	idle      []*starlark.Thread
	capacity  int
	stepLimit uint64
	logger    *slog.Logger
}

// NewThreadPool creates a pool keeping at most capacity idle threads.
func NewThreadPool(capacity int, logger *slog.Logger) *ThreadPool {
	if capacity <= 0 {
		capacity = 4
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ThreadPool{
		idle:      make([]*starlark.Thread, 0, capacity),
		capacity:  capacity,
		stepLimit: DefaultStepLimit,
		logger:    logger,
	}
}

// SetStepLimit changes the per-run step budget. Zero disables the limit.
func (p *ThreadPool) SetStepLimit(n uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stepLimit = n
}

// Get returns an idle thread, or a new one, named for error reporting.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	p.mu.Lock()
	limit := p.stepLimit
	var thread *starlark.Thread
	if n := len(p.idle); n > 0 {
		thread = p.idle[n-1]
		p.idle = p.idle[:n-1]
	}
	p.mu.Unlock()

	if thread == nil {
		logger := p.logger
		thread = &starlark.Thread{
			Print: func(t *starlark.Thread, msg string) {
				logger.Debug("script print", "script", t.Name, "msg", msg)
			},
		}
	}
	thread.Name = name
	// The step counter is cumulative over a thread's lifetime.
	if limit > 0 {
		thread.SetMaxExecutionSteps(thread.ExecutionSteps() + limit)
	} else {
		thread.SetMaxExecutionSteps(0)
	}
	return thread
}

// Put returns thread to the pool. Threads beyond capacity are dropped.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	thread.Name = ""
	thread.Uncancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) < p.capacity {
		p.idle = append(p.idle, thread)
	}
}

// Size returns the number of idle threads.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
