// Author: momentics
//
// Executor contract for task hand-off. The wheel's tick worker must never
// block running user code directly; it always hands fired tasks to an
// Executor and returns immediately to the tick loop.
package api

// Executor abstracts task dispatch away from the wheel's single tick
// worker. Submit must not block under normal operation and must not call
// back into the timer's Stop synchronously.
type Executor interface {
	// Submit enqueues fn for execution. Returns an error if the executor
	// cannot accept more work (e.g. it has been closed).
	Submit(fn func()) error

	// NumWorkers returns the number of active worker goroutines.
	NumWorkers() int

	// Close shuts the executor down, waiting for in-flight tasks to
	// finish running (but not for queued tasks to be submitted).
	Close() error
}
