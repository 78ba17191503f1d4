package parallel

import "errors"

var (
	// ErrClosed is returned by Run after Close has been called.
	ErrClosed = errors.New("parallel: worker pool is closed")

	// ErrTaskPanic wraps a panic recovered from a task.
	ErrTaskPanic = errors.New("parallel: task panicked")
)
