// Author: momentics
//
// Logger is a minimal diagnostics sink. A null-sink implementation is
// acceptable and is the default; callers that want structured logging
// (zap, zerolog, slog) wrap it behind these two methods.
package api

// Logger receives warnings and errors the core cannot otherwise surface
// synchronously (a bad cancellation, an executor rejection, a swallowed
// panic in user code).
type Logger interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
