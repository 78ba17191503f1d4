package parallel

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

func TestWorkerPool_CreateNegativeWorkers(t *testing.T) {
	pool := NewWorkerPool(-5)
	defer pool.Close()

	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

// =============================================================================
// Run Tests
// =============================================================================

func TestWorkerPool_RunAllTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	const numTasks = 1000

	if err := pool.Run(numTasks, func(int) { counter.Add(1) }); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if counter.Load() != numTasks {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

func TestWorkerPool_RunDisjointWrites(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	out := make([]int, 257)
	if err := pool.Run(len(out), func(i int) { out[i] = i * i }); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, v := range out {
		if v != i*i {
			t.Fatalf("out[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestWorkerPool_RunZeroTasks(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	called := false
	if err := pool.Run(0, func(int) { called = true }); err != nil {
		t.Errorf("Run(0) error = %v", err)
	}
	if called {
		t.Error("Run(0) must not invoke the task")
	}
}

func TestWorkerPool_RunRecoversPanic(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	var ran atomic.Int64
	err := pool.Run(10, func(i int) {
		ran.Add(1)
		if i == 3 {
			panic("boom")
		}
	})
	if !errors.Is(err, ErrTaskPanic) {
		t.Fatalf("Run() error = %v, want ErrTaskPanic", err)
	}
	if ran.Load() != 10 {
		t.Errorf("ran = %d, want 10 (other tasks still complete)", ran.Load())
	}

	// The pool stays usable after a panic.
	if err := pool.Run(4, func(int) {}); err != nil {
		t.Errorf("Run() after panic error = %v", err)
	}
}

func TestWorkerPool_RunAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	if err := pool.Run(5, func(int) { t.Error("task ran on closed pool") }); !errors.Is(err, ErrClosed) {
		t.Errorf("Run() on closed pool error = %v, want ErrClosed", err)
	}
}

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after Close")
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkWorkerPool_Run(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	sink := make([]float64, 1024)
	b.ResetTimer()
	for range b.N {
		_ = pool.Run(len(sink), func(i int) {
			v := float64(i)
			for range 100 {
				v = v*0.5 + 1
			}
			sink[i] = v
		})
	}
}
