package hwtimer

import (
	"github.com/momentics/hwtimer/api"
	"github.com/momentics/hwtimer/internal/clock"
	"github.com/momentics/hwtimer/workerpool"
)

// config holds the parameters an Option mutates: tick duration, wheel
// size, the pending-entry cap, the executor, the clock, and the logger.
type config struct {
	tickDurationMs int64
	ticksPerWheel  int
	maxPending     int64
	executor       api.Executor
	ownsExecutor   bool
	clock          api.Clock
	logger         api.Logger
}

// DefaultConfig returns the out-of-the-box configuration: a 100ms tick,
// 512 buckets, and no pending-entry cap.
func DefaultConfig() *config {
	return &config{
		tickDurationMs: 100,
		ticksPerWheel:  512,
		maxPending:     0,
		clock:          clock.New(),
		logger:         NopLogger{},
	}
}

// Option customizes a Timer at construction.
type Option func(*config)

// WithTickDuration sets the wheel's tick duration in milliseconds. NewTimer
// clamps a value below 1ms up to 1ms and logs a warning.
func WithTickDuration(ms int64) Option {
	return func(c *config) { c.tickDurationMs = ms }
}

// WithTicksPerWheel sets the number of buckets in the wheel. NewTimer
// rounds it up to the next power of two so the tick-to-slot mapping can
// use a mask instead of a modulo.
func WithTicksPerWheel(n int) Option {
	return func(c *config) { c.ticksPerWheel = n }
}

// WithMaxPending caps the number of outstanding (not yet fired or
// cancelled) entries. A value <= 0 means unbounded.
func WithMaxPending(max int64) Option {
	return func(c *config) { c.maxPending = max }
}

// WithExecutor supplies the Executor fired tasks are submitted to. If not
// set, NewTimer constructs a workerpool.Pool sized to runtime.NumCPU() and
// owns its lifecycle (closing it on Stop).
func WithExecutor(executor api.Executor) Option {
	return func(c *config) {
		c.executor = executor
		c.ownsExecutor = false
	}
}

// WithClock overrides the monotonic time source. Intended for tests that
// need to drive the wheel deterministically.
func WithClock(clk api.Clock) Option {
	return func(c *config) { c.clock = clk }
}

// WithLogger overrides the diagnostics sink. Defaults to NopLogger.
func WithLogger(logger api.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func (c *config) defaultExecutor() api.Executor {
	if c.executor != nil {
		return c.executor
	}
	c.ownsExecutor = true
	return workerpool.New(0)
}
