package host

import (
	"time"

	"github.com/l1jgo/tickframe/internal/core/sched"
	"go.uber.org/multierr"
)

// Manual is a synthetic host: time only moves when the caller says so. It
// implements sched.FrameClock and sched.IdleScheduler and is what tests and
// headless replays drive the scheduler with.
type Manual struct {
	now    time.Duration
	budget time.Duration
	frames []sched.FrameFunc
	idles  []sched.IdleFunc
}

// NewManual returns a host whose clock reads start and whose idle callbacks
// receive the given budget.
func NewManual(start, idleBudget time.Duration) *Manual {
	return &Manual{now: start, budget: idleBudget}
}

func (m *Manual) Now() time.Duration { return m.now }

func (m *Manual) RequestFrame(fn sched.FrameFunc) {
	m.frames = append(m.frames, fn)
}

func (m *Manual) RequestIdle(fn sched.IdleFunc) {
	m.idles = append(m.idles, fn)
}

// Pending reports how many frame and idle callbacks are queued.
func (m *Manual) Pending() (frames, idles int) {
	return len(m.frames), len(m.idles)
}

// Advance moves the clock forward without delivering anything.
func (m *Manual) Advance(d time.Duration) {
	m.now += d
}

// Frame sets the clock to now, delivers every queued frame callback, then
// every idle callback those frames queued. Callbacks requested during idle
// wait for the next Frame. Errors from all callbacks are combined.
func (m *Manual) Frame(now time.Duration) error {
	m.now = now

	var errs error
	frames := m.frames
	m.frames = nil
	for _, fn := range frames {
		errs = multierr.Append(errs, fn(now))
	}

	idles := m.idles
	m.idles = nil
	for _, fn := range idles {
		errs = multierr.Append(errs, fn(FixedDeadline(m.budget)))
	}
	return errs
}

// Step advances the clock by d and delivers one frame.
func (m *Manual) Step(d time.Duration) error {
	return m.Frame(m.now + d)
}
