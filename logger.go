package hwtimer

import "log"

// NopLogger discards everything. It is the default Logger, matching the
// corpus's convention (facade/hioload.go, timer/crontab/scheduler.go) of
// logging via the standard log package rather than a structured logger,
// while letting callers swap in zap/zerolog/slog by satisfying api.Logger.
type NopLogger struct{}

func (NopLogger) Warnf(format string, args ...any)  {}
func (NopLogger) Errorf(format string, args ...any) {}

// StdLogger adapts the standard library's log package to api.Logger, the
// way facade/hioload.go and the teacher's timer-domain siblings do.
type StdLogger struct{}

func (StdLogger) Warnf(format string, args ...any) {
	log.Printf("WARN "+format, args...)
}

func (StdLogger) Errorf(format string, args ...any) {
	log.Printf("ERROR "+format, args...)
}
