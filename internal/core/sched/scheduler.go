package sched

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// ErrInvalidConfiguration is returned by Run for a non-positive tick rate or
// a negative backlog bound.
var ErrInvalidConfiguration = errors.New("sched: invalid configuration")

// Scheduler turns host frame callbacks into a fixed-rate tick sequence plus
// one interpolated render per frame.
type Scheduler struct {
	clock      FrameClock
	idle       IdleScheduler
	log        *zap.Logger
	maxBacklog int
}

// New creates a scheduler bound to the given host primitives.
func New(clock FrameClock, idle IdleScheduler, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock: clock,
		idle:  idle,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run preloads and initializes c, then starts driving it at rate ticks per
// simulated second. Preload and Init errors are returned unchanged and
// nothing is scheduled. On success the first frame has been requested from
// the host and the returned Session controls the loop.
//
// Cancelling ctx stops the session the same way Session.Stop does.
func (s *Scheduler) Run(ctx context.Context, c Consumer, rate float64) (*Session, error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("%w: tick rate must be positive, got %v", ErrInvalidConfiguration, rate)
	}
	if s.maxBacklog < 0 {
		return nil, fmt.Errorf("%w: max backlog must not be negative, got %d", ErrInvalidConfiguration, s.maxBacklog)
	}

	if err := c.Preload(ctx); err != nil {
		return nil, err
	}
	if err := c.Init(); err != nil {
		return nil, err
	}

	ss := &Session{
		sched:    s,
		consumer: c,
		ctx:      ctx,
		rate:     rate,
		step:     1 / rate,
		last:     s.clock.Now(),
		done:     make(chan struct{}),
	}
	s.log.Info("scheduler started",
		zap.Float64("tick_rate", rate),
		zap.Duration("frame_interval", ss.FrameInterval()),
		zap.Int("max_backlog", s.maxBacklog),
	)
	s.clock.RequestFrame(ss.frame)
	return ss, nil
}
