package sched

import "time"

// FrameFunc is invoked by the host once, at or before the next display
// refresh, with the host's monotonic timestamp.
type FrameFunc func(now time.Duration) error

// IdleFunc is invoked by the host when it has spare time before the next
// frame is due.
type IdleFunc func(deadline Deadline) error

// Deadline describes the idle budget handed to an IdleFunc.
type Deadline interface {
	// TimeRemaining reports how much of the idle period is left.
	TimeRemaining() time.Duration
	// DidTimeout reports whether the callback runs because a timeout expired
	// rather than because the host went idle.
	DidTimeout() bool
}

// FrameClock is the host's per-frame clock. Timestamps are offsets from the
// host's origin and never decrease.
type FrameClock interface {
	Now() time.Duration
	RequestFrame(fn FrameFunc)
}

// IdleScheduler delivers idle-time callbacks.
type IdleScheduler interface {
	RequestIdle(fn IdleFunc)
}
