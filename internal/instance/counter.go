// Package instance tracks how many hwtimer.Timer instances are alive in
// this process, emitting a one-shot warning once that count gets large
// enough to suggest the caller meant to share a single instance instead.
package instance

import (
	"sync/atomic"

	"github.com/momentics/hwtimer/api"
)

// warnThreshold is the number of simultaneously live timers above which a
// one-shot warning is emitted. Advisory only; it never blocks creation.
const warnThreshold = 64

var (
	live uint64
	warned atomic.Bool
)

// Acquire registers one more live timer and returns a release func. If the
// live count exceeds warnThreshold and no warning has been emitted yet,
// logger is notified once for the lifetime of the process.
func Acquire(logger api.Logger) (release func()) {
	n := atomic.AddUint64(&live, 1)
	if n > warnThreshold && warned.CompareAndSwap(false, true) {
		logger.Warnf("hwtimer: %d timer instances are live; a single shared instance is usually preferable", n)
	}
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			atomic.AddUint64(&live, ^uint64(0))
		}
	}
}

// Live returns the current process-wide count, for tests and diagnostics.
func Live() uint64 {
	return atomic.LoadUint64(&live)
}
