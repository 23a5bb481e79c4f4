package hwtimer

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/momentics/hwtimer/api"
	"github.com/momentics/hwtimer/internal/instance"
	"github.com/momentics/hwtimer/queue"
)

// worker lifecycle states. Transitions are INIT->STARTED (once, by the
// first successful registration) and STARTED->SHUTDOWN (once, by Stop);
// both are CAS-serialized and absorbing.
const (
	timerInit int32 = iota
	timerStarted
	timerShutdown
)

// intakeBatch bounds how many freshly registered entries are placed into
// buckets per tick, so a producer flood cannot starve the expiry sweep.
const intakeBatch = 100_000

// maxSleepStepMs bounds a single sleep iteration inside the tick loop so
// the clock is re-read at least this often during a long tick_duration.
const maxSleepStepMs = 50

// Timer is a hashed wheel timer: a scheduler for a large number of delayed
// one-shot tasks, trading exact firing time for near-constant amortized
// cost of insertion, cancellation, and expiry. A single background worker
// owns the wheel and every bucket mutation; callers only ever touch
// atomic counters, the atomic state word on a Timeout, and two lock-free
// queues.
type Timer struct {
	wheel          []*bucket
	mask           uint64
	tickDurationMs int64
	startMs        int64

	pending     atomic.Int64
	maxPending  int64
	workerState atomic.Int32

	intake      *queue.MPSC[*Timeout]
	cancelQueue *queue.MPSC[*Timeout]

	executor     api.Executor
	ownsExecutor bool
	clock        api.Clock
	logger       api.Logger

	releaseInstance func()
	stopCh          chan struct{}
	doneCh          chan struct{}
	unprocessed     []*Timeout
}

// NewTimer constructs a Timer. The tick worker is not started until the
// first successful NewTimeout call.
func NewTimer(opts ...Option) (*Timer, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.tickDurationMs < 1 {
		cfg.logger.Warnf("hwtimer: tick_duration %dms below the 1ms minimum, clamped up", cfg.tickDurationMs)
		cfg.tickDurationMs = 1
	}
	if cfg.ticksPerWheel < 1 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, api.ErrInvalidArgument,
			fmt.Sprintf("ticks_per_wheel must be >= 1, got %d", cfg.ticksPerWheel))
	}
	wheelLen := nextPowerOfTwo(cfg.ticksPerWheel)
	if wheelLen > 1<<30 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, api.ErrInvalidArgument,
			fmt.Sprintf("ticks_per_wheel %d rounds up to %d, exceeding 2^30", cfg.ticksPerWheel, wheelLen))
	}
	if cfg.tickDurationMs >= math.MaxInt64/int64(wheelLen) {
		return nil, api.NewError(api.ErrCodeInvalidArgument, api.ErrInvalidArgument,
			"tick_duration * ticks_per_wheel overflows a signed 64-bit integer")
	}

	wheel := make([]*bucket, wheelLen)
	for i := range wheel {
		wheel[i] = &bucket{}
	}

	t := &Timer{
		wheel:          wheel,
		mask:           uint64(wheelLen - 1),
		tickDurationMs: cfg.tickDurationMs,
		maxPending:     cfg.maxPending,
		clock:          cfg.clock,
		logger:         cfg.logger,
		executor:       cfg.defaultExecutor(),
		ownsExecutor:   cfg.ownsExecutor,
		intake:         queue.New[*Timeout](),
		cancelQueue:    queue.New[*Timeout](),
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
	t.startMs = t.clock.NowMs()
	t.releaseInstance = instance.Acquire(cfg.logger)
	return t, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// NewTimeout registers task to run after delayMs milliseconds and returns a
// handle. Validates the task and the timer's lifecycle state, accounts for
// the pending cap, lazily starts the worker on the first call to succeed,
// then hands the entry to the intake queue.
func (t *Timer) NewTimeout(task api.Task, delayMs int64) (*Timeout, error) {
	if task == nil {
		return nil, api.ErrInvalidArgument
	}
	if t.workerState.Load() == timerShutdown {
		return nil, api.ErrTimerStopped
	}

	n := t.pending.Add(1)
	if t.maxPending > 0 && n > t.maxPending {
		t.pending.Add(-1)
		return nil, api.ErrCapacityExceeded
	}

	if t.workerState.CompareAndSwap(timerInit, timerStarted) {
		go t.run()
	} else if t.workerState.Load() == timerShutdown {
		t.pending.Add(-1)
		return nil, api.ErrTimerStopped
	}

	deadline := addClampOverflow(t.clock.NowMs()-t.startMs, delayMs)
	e := &Timeout{}
	e.reset(t, task, deadline)
	t.intake.Enqueue(e)
	return e, nil
}

func addClampOverflow(base, delay int64) int64 {
	if delay > 0 && base > math.MaxInt64-delay {
		return math.MaxInt64
	}
	if delay < 0 && base < math.MinInt64-delay {
		return math.MinInt64
	}
	return base + delay
}

// PendingTimeouts returns the current value of the pending-entry counter.
// Advisory only.
func (t *Timer) PendingTimeouts() int64 {
	return t.pending.Load()
}

// Stop shuts the timer down, returning every entry that had not yet fired.
// Idempotent: a timer that was never started, or already stopped, returns
// an empty slice.
func (t *Timer) Stop() []*Timeout {
	if t.workerState.CompareAndSwap(timerStarted, timerShutdown) {
		close(t.stopCh)
		<-t.doneCh
		return t.unprocessed
	}
	if t.workerState.CompareAndSwap(timerInit, timerShutdown) {
		t.releaseInstance()
		if t.ownsExecutor {
			_ = t.executor.Close()
		}
	}
	return nil
}

// run is the tick worker: it owns the wheel exclusively for the lifetime
// of the Timer. Every tick it drains the cancellation queue, drains a
// bounded batch of the intake queue, sweeps the current bucket for
// expiries, then advances.
func (t *Timer) run() {
	defer close(t.doneCh)

	var currentTick int64
	for {
		targetDeadline := t.tickDurationMs * (currentTick + 1)
		if !t.sleepUntil(targetDeadline) {
			t.shutdown()
			return
		}

		t.cancelQueue.DrainAll(func(e *Timeout) { t.unlinkCancelled(e) })
		t.intake.DrainBatch(intakeBatch, func(e *Timeout) { t.place(e, currentTick) })

		slot := uint64(currentTick) & t.mask
		var due []*Timeout
		violated := t.wheel[slot].expireTimeouts(targetDeadline, &due)
		for _, e := range due {
			t.fire(e)
		}
		if violated != nil {
			t.logger.Errorf("hwtimer: invariant violation: entry deadline %dms exceeds tick deadline %dms with remaining_rounds exhausted",
				violated.deadline, targetDeadline)
			t.shutdown()
			return
		}

		currentTick++
		select {
		case <-t.stopCh:
			t.shutdown()
			return
		default:
		}
	}
}

// sleepUntil blocks until clock_now - start_time >= targetDeadline,
// waking in bounded steps to re-read the clock. A close of stopCh
// interrupts any wait immediately. Returns false if stopCh fired first.
func (t *Timer) sleepUntil(targetDeadline int64) bool {
	for {
		now := t.clock.NowMs() - t.startMs
		remaining := targetDeadline - now
		if remaining <= 0 {
			return true
		}
		wait := remaining
		if wait > maxSleepStepMs {
			wait = maxSleepStepMs
		}
		timer := time.NewTimer(time.Duration(wait) * time.Millisecond)
		select {
		case <-timer.C:
		case <-t.stopCh:
			timer.Stop()
			return false
		}
	}
}

// place assigns e to the bucket for its deadline, computing how many full
// revolutions of the wheel it must wait out first. An entry that was
// already cancelled before intake drained it is never placed into a
// bucket at all; its pending slot is released here since it will never
// reach bucket.remove.
func (t *Timer) place(e *Timeout, currentTick int64) {
	if e.IsCancelled() {
		t.pending.Add(-1)
		t.notifyCancel(e)
		return
	}

	wheelLen := int64(len(t.wheel))
	calculatedTick := e.deadline / t.tickDurationMs
	rounds := (calculatedTick - currentTick) / wheelLen
	if rounds < 0 {
		rounds = 0
	}
	e.remainingRounds = rounds

	targetTick := calculatedTick
	if currentTick > targetTick {
		targetTick = currentTick
	}
	slot := uint64(targetTick) & t.mask
	t.wheel[slot].add(e)
}

// unlinkCancelled drains one cancellation-queue entry. If the entry was
// never placed (still in the intake queue, or already discarded by place
// on an earlier tick), its pending slot is released by place instead, so
// this is a no-op here. Any panic from a cancel-notifier
// callback is logged and swallowed so one bad entry cannot stall the
// worker.
func (t *Timer) unlinkCancelled(e *Timeout) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Errorf("hwtimer: recovered panic unlinking cancelled entry: %v", r)
		}
	}()
	b := e.bucket
	if b == nil {
		return
	}
	b.remove(e)
	t.notifyCancel(e)
}

func (t *Timer) notifyCancel(e *Timeout) {
	if notifier, ok := e.task.(api.CancelNotifier); ok {
		notifier.Cancel(e)
	}
}

// fire transitions a swept entry to EXPIRED and hands it to the executor.
// If the entry was cancelled before this CAS, it is not submitted; because
// the sweep has already unlinked it, the cancellation drain will find it
// outside any bucket, so its cancel notifier is invoked here instead.
func (t *Timer) fire(e *Timeout) {
	if !e.state.CompareAndSwap(stateInit, stateExpired) {
		if e.IsCancelled() {
			t.notifyCancel(e)
		}
		return
	}
	task, handle := e.task, api.Handle(e)
	if err := t.executor.Submit(func() { task.Run(handle) }); err != nil {
		t.logger.Errorf("hwtimer: executor rejected fired task: %v", err)
	}
}

// shutdown runs once, from inside run, after the tick loop exits: it
// drains every bucket, then the intake queue, then the cancellation
// queue, and publishes whatever is left as the unprocessed set.
func (t *Timer) shutdown() {
	var unprocessed []*Timeout
	for _, b := range t.wheel {
		b.drainInto(&unprocessed)
	}
	t.intake.DrainAll(func(e *Timeout) {
		t.pending.Add(-1)
		if e.state.CompareAndSwap(stateInit, stateCancelled) {
			unprocessed = append(unprocessed, e)
		}
	})
	t.cancelQueue.DrainAll(func(e *Timeout) {
		if e.bucket != nil {
			e.bucket.remove(e)
		}
	})
	t.unprocessed = unprocessed

	if t.ownsExecutor {
		_ = t.executor.Close()
	}
	t.releaseInstance()
}
