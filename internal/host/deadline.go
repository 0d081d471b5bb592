package host

import "time"

// deadline is the idle budget handed to idle callbacks.
type deadline struct {
	until    time.Time
	now      func() time.Time
	timedOut bool
}

func (d deadline) TimeRemaining() time.Duration {
	if r := d.until.Sub(d.now()); r > 0 {
		return r
	}
	return 0
}

func (d deadline) DidTimeout() bool { return d.timedOut }

// FixedDeadline is a budget that does not shrink while the callback runs.
// Used by the synthetic host so idle work is deterministic.
type FixedDeadline time.Duration

func (d FixedDeadline) TimeRemaining() time.Duration { return time.Duration(d) }
func (d FixedDeadline) DidTimeout() bool             { return false }
