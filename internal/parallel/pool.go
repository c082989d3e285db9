// Package parallel runs independent pieces of the folding pipeline on a
// fixed set of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool executes submitted functions on a fixed number of goroutines.
// Safe for concurrent use.
type WorkerPool struct {
	workers int
	queue   chan func()
	wg      sync.WaitGroup
	running atomic.Bool
	closeMu sync.RWMutex
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers: workers,
		queue:   make(chan func(), queueSize),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for work := range p.queue {
		work()
	}
}

// ExecuteAll runs every function and returns once all have finished.
// On a closed pool the work runs on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()

	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var done sync.WaitGroup
	done.Add(len(work))
	for _, fn := range work {
		p.queue <- func() {
			defer done.Done()
			fn()
		}
	}
	done.Wait()
}

// ForEach calls fn(i) for i in [0, n) across the pool and waits.
func (p *WorkerPool) ForEach(n int, fn func(i int)) {
	work := make([]func(), n)
	for i := range n {
		work[i] = func() { fn(i) }
	}
	p.ExecuteAll(work)
}

// Close stops the workers after queued work drains. Safe to call twice.
func (p *WorkerPool) Close() {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.queue)
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
