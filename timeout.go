package hwtimer

import (
	"sync/atomic"

	"github.com/momentics/hwtimer/api"
)

// entry lifecycle states. Transitions are INIT->CANCELLED and
// INIT->EXPIRED, both via compare-and-set; both are absorbing.
const (
	stateInit int32 = iota
	stateCancelled
	stateExpired
)

// Timeout is the per-scheduled-task record returned to a registrant by
// Timer.NewTimeout. Its prev/next/bucket fields make it an intrusive
// doubly-linked-list node so a bucket can unlink it in O(1) without a
// separate allocation, grounded on other_examples/cyub-hashedwheeltimer's
// HashedWheelTimeout (next/prev/bucket fields, CAS-based Cancel/Expire) and
// on libraSolo-goServerTools/timer/timeWheel/timer_task.go's atomic bucket
// back-pointer.
//
// Only the tick worker mutates prev, next, bucket, and remainingRounds;
// producers touch only state, via Cancel/IsExpired/IsCancelled.
type Timeout struct {
	timer    *Timer
	task     api.Task
	deadline int64 // ms since timer start
	state    atomic.Int32

	remainingRounds int64
	prev, next      *Timeout
	bucket          *bucket
}

var _ api.Handle = (*Timeout)(nil)

// Cancel attempts to move the entry from INIT to CANCELLED. Returns false
// if the entry already fired or was already cancelled. On success the
// entry is pushed onto the owning Timer's cancellation queue for
// unlinking on the next tick; Cancel itself never touches bucket links or
// the pending counter directly.
func (t *Timeout) Cancel() bool {
	if !t.state.CompareAndSwap(stateInit, stateCancelled) {
		return false
	}
	t.timer.cancelQueue.Enqueue(t)
	return true
}

// IsExpired reports whether the task has already run.
func (t *Timeout) IsExpired() bool {
	return t.state.Load() == stateExpired
}

// IsCancelled reports whether the entry was cancelled before firing.
func (t *Timeout) IsCancelled() bool {
	return t.state.Load() == stateCancelled
}

// RemainingMs reports the approximate milliseconds left before the entry
// is due, for diagnostics. May be negative once past due but not yet
// swept.
func (t *Timeout) RemainingMs() int64 {
	return t.deadline - (t.timer.clock.NowMs() - t.timer.startMs)
}

// reset initializes a freshly allocated Timeout. Entries are not pooled:
// a Timeout is the public handle, and a caller may retain one indefinitely
// after it fires or is cancelled, so recycling the struct into a pool for
// a future unrelated registration would let a stale handle observe a
// different entry's state.
func (t *Timeout) reset(timer *Timer, task api.Task, deadline int64) {
	t.timer = timer
	t.task = task
	t.deadline = deadline
	t.state.Store(stateInit)
	t.remainingRounds = 0
	t.prev, t.next, t.bucket = nil, nil, nil
}
