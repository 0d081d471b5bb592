package sched

import "go.uber.org/zap"

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler's logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMaxBacklog bounds the number of ticks a single frame may run. Whole
// steps beyond the bound are discarded; the fractional remainder is kept.
// Zero means unbounded catch-up.
func WithMaxBacklog(steps int) Option {
	return func(s *Scheduler) {
		s.maxBacklog = steps
	}
}
