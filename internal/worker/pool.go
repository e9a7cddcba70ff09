package worker

import (
	"log/slog"
	"sync"
)

type task func()

// Pool runs submitted tasks on a fixed set of goroutines over a bounded queue.
type Pool struct {
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	jobs   chan task
}

func NewPool(n, queue int) *Pool {
	if n <= 0 {
		n = 1
	}
	if queue <= 0 {
		queue = 1024
	}
	p := &Pool{jobs: make(chan task, queue)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				run(job)
			}
		}()
	}
	return p
}

func run(job task) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("worker task panic", "err", rec)
		}
	}()
	job()
}

// TrySubmit queues f without blocking. It reports false when the queue is full
// or the pool is stopped.
func (p *Pool) TrySubmit(f func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- f:
		return true
	default:
		return false
	}
}

// Len is the number of queued tasks not yet picked up.
func (p *Pool) Len() int { return len(p.jobs) }

// Stop drains the queue and waits for running tasks. Safe to call twice.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
