package host

import (
	"context"
	"fmt"
	"time"

	"github.com/l1jgo/tickframe/internal/core/sched"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Loop is a real-time host. The goroutine calling Run owns the callback
// queues: frame callbacks fire on a ticker at the refresh rate and idle
// callbacks run in the gap before the next refresh.
//
// RequestFrame and RequestIdle must be called from inside a callback or
// before Run starts.
type Loop struct {
	log      *zap.Logger
	interval time.Duration
	origin   time.Time
	next     time.Time

	frames []sched.FrameFunc
	idles  []sched.IdleFunc
	errs   error
}

// NewLoop creates a host refreshing refreshRate times per second.
func NewLoop(refreshRate float64, log *zap.Logger) (*Loop, error) {
	if refreshRate <= 0 {
		return nil, fmt.Errorf("host: refresh rate must be positive, got %v", refreshRate)
	}
	if log == nil {
		log = zap.NewNop()
	}
	interval := time.Duration(float64(time.Second) / refreshRate)
	now := time.Now()
	return &Loop{
		log:      log,
		interval: interval,
		origin:   now,
		next:     now.Add(interval),
	}, nil
}

// Interval is the time between two refreshes.
func (l *Loop) Interval() time.Duration { return l.interval }

func (l *Loop) Now() time.Duration { return time.Since(l.origin) }

func (l *Loop) RequestFrame(fn sched.FrameFunc) {
	l.frames = append(l.frames, fn)
}

func (l *Loop) RequestIdle(fn sched.IdleFunc) {
	l.idles = append(l.idles, fn)
}

// Run delivers callbacks until both queues are empty, then returns every
// callback error combined. A failing callback is logged and does not stop
// the loop. Cancelling ctx aborts immediately, abandoning queued callbacks.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	l.next = time.Now().Add(l.interval)

	for {
		if len(l.frames) == 0 && len(l.idles) == 0 {
			return l.errs
		}
		if len(l.idles) > 0 {
			l.runIdle()
			continue
		}

		select {
		case <-ctx.Done():
			return multierr.Append(l.errs, ctx.Err())
		case t := <-ticker.C:
			l.next = t.Add(l.interval)
			l.runFrames(t.Sub(l.origin))
		}
	}
}

func (l *Loop) runFrames(ts time.Duration) {
	frames := l.frames
	l.frames = nil
	for _, fn := range frames {
		l.record("frame", fn(ts))
	}
}

func (l *Loop) runIdle() {
	idles := l.idles
	l.idles = nil
	d := deadline{until: l.next, now: time.Now, timedOut: !time.Now().Before(l.next)}
	for _, fn := range idles {
		l.record("idle", fn(d))
	}
}

func (l *Loop) record(kind string, err error) {
	if err == nil {
		return
	}
	l.log.Warn("host callback failed", zap.String("kind", kind), zap.Error(err))
	l.errs = multierr.Append(l.errs, err)
}
