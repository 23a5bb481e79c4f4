// Package clock provides the default api.Clock used when a caller does not
// supply one: a thin wrapper over time.Now, which on every supported Go
// platform already carries a monotonic reading that time.Time arithmetic
// (Sub, Since) consults transparently, so wall-clock adjustments never
// perturb it.
package clock

import "time"

// Monotonic is the default api.Clock.
type Monotonic struct {
	start time.Time
}

// New returns a Monotonic clock anchored at the current instant.
func New() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// NowMs returns milliseconds elapsed since the clock was constructed.
func (m *Monotonic) NowMs() int64 {
	return time.Since(m.start).Milliseconds()
}
