// Package parallel provides the fixed-size worker pool that fans a frame's
// per-row and per-generator tasks out across goroutines.
//
// A frame is dispatched as a batch of independent tasks and the caller blocks
// until every task has returned. Tasks never suspend; each runs to completion
// on one worker.
package parallel

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines for data-parallel rendering.
//
// Each worker owns a queue. Tasks are distributed round-robin; a worker whose
// queue is empty steals from the others, which balances rows of uneven cost
// (for example rows crossing the Mandelbrot interior).
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queues holds per-worker task queues.
	queues []chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Buffer size: 2-4x workers helps hide latency
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]

	for {
		select {
		case <-p.done:
			p.drain(own)
			return

		case task := <-own:
			task()

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			// Nothing anywhere, block on own queue
			select {
			case <-p.done:
				p.drain(own)
				return
			case task := <-own:
				task()
			}
		}
	}
}

// drain executes all remaining tasks in a queue.
func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case task := <-queue:
			task()
		default:
			return
		}
	}
}

// steal attempts to take a task from another worker's queue.
// Returns nil if no work is available.
func (p *WorkerPool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case task := <-p.queues[i]:
			return task
		default:
		}
	}
	return nil
}

// Run executes fn(0) … fn(n-1) across the workers and blocks until all of
// them have returned. A panic inside a task is recovered and reported as an
// error once the batch has joined, so one bad task cannot kill a worker.
// If the pool is closed, Run returns ErrClosed without running anything.
func (p *WorkerPool) Run(n int, fn func(task int)) error {
	if n <= 0 {
		return nil
	}
	if !p.running.Load() {
		return ErrClosed
	}

	var (
		join     sync.WaitGroup
		panicked atomic.Pointer[string]
	)
	join.Add(n)

	for i := range n {
		task := i
		wrapped := func() {
			defer join.Done()
			defer func() {
				if r := recover(); r != nil {
					msg := fmt.Sprintf("task %d: %v", task, r)
					panicked.CompareAndSwap(nil, &msg)
				}
			}()
			fn(task)
		}

		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			// Pool is closing; account for every task not yet queued.
			for range n - i {
				join.Done()
			}
			join.Wait()
			return ErrClosed
		}
	}

	join.Wait()

	if msg := panicked.Load(); msg != nil {
		return fmt.Errorf("%w: %s", ErrTaskPanic, *msg)
	}
	return nil
}

// Close gracefully shuts down the pool.
// It stops accepting new work, waits for all queued work to complete,
// and then stops all workers.
// Close is safe to call multiple times, but must not race with Run.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
