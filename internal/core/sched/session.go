package sched

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Stats is a snapshot of a session's timing state.
type Stats struct {
	TickID           uint64  // completed ticks
	SimulatedRuntime float64 // simulated seconds advanced
	UnsimulatedTime  float64 // real seconds not yet converted into ticks
	Frames           uint64  // frames processed
	DiscardedSteps   uint64  // whole steps dropped by the backlog bound
}

// Session is one running loop started by Scheduler.Run.
//
// Everything except Stop and Done must be used from the host goroutine.
type Session struct {
	sched    *Scheduler
	consumer Consumer
	ctx      context.Context

	rate float64
	step float64

	// elapsed is the exact sum of real time between frames; the accumulator
	// is derived from it so rounding never compounds across frames.
	last      time.Duration
	elapsed   time.Duration
	tickID    uint64
	discarded uint64
	frames    uint64

	stopping atomic.Bool
	finished bool
	err      error
	done     chan struct{}
}

// Stop asks the loop to end. The session finishes at its next checkpoint:
// the start of a frame, before idle work, or before requesting the next
// frame. Safe to call from any goroutine, any number of times.
func (ss *Session) Stop() {
	ss.stopping.Store(true)
}

// Done is closed once the session has finished.
func (ss *Session) Done() <-chan struct{} {
	return ss.done
}

// Err returns the hook error that ended the session, if any. Only meaningful
// after Done is closed.
func (ss *Session) Err() error {
	return ss.err
}

// StepDuration is the simulated seconds per tick.
func (ss *Session) StepDuration() float64 { return ss.step }

// FrameInterval is the real time one tick represents. Informational only:
// pacing always comes from the host clock.
func (ss *Session) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / ss.rate)
}

// Stats returns the current timing state.
func (ss *Session) Stats() Stats {
	return Stats{
		TickID:           ss.tickID,
		SimulatedRuntime: float64(ss.tickID) * ss.step,
		UnsimulatedTime:  (ss.totalSteps() - float64(ss.tickID+ss.discarded)) * ss.step,
		Frames:           ss.frames,
		DiscardedSteps:   ss.discarded,
	}
}

func (ss *Session) frame(now time.Duration) error {
	if ss.stopped() {
		ss.finish(nil)
		return nil
	}
	ss.frames++

	if d := now - ss.last; d > 0 {
		ss.elapsed += d
	}
	ss.last = now

	total := ss.totalSteps()
	due := uint64(math.Floor(total)) - ss.discarded
	if limit := uint64(ss.sched.maxBacklog); limit > 0 && due > ss.tickID+limit {
		drop := due - ss.tickID - limit
		ss.discarded += drop
		due -= drop
		ss.sched.log.Debug("tick backlog clamped",
			zap.Uint64("dropped_steps", drop),
			zap.Uint64("tick_id", ss.tickID),
		)
	}

	for ss.tickID < due {
		next := ss.tickID + 1
		if err := ss.consumer.Tick(ss.step, float64(next)*ss.step, next); err != nil {
			return ss.fail("tick", err)
		}
		ss.tickID = next
	}

	if err := ss.consumer.Update(now); err != nil {
		return ss.fail("update", err)
	}
	if err := ss.consumer.Render(total-math.Floor(total), now); err != nil {
		return ss.fail("render", err)
	}

	ss.sched.idle.RequestIdle(ss.idle)
	return nil
}

func (ss *Session) idle(deadline Deadline) error {
	if ss.stopped() {
		ss.finish(nil)
		return nil
	}
	if err := ss.consumer.Idle(deadline); err != nil {
		return ss.fail("idle", err)
	}
	if ss.stopped() {
		ss.finish(nil)
		return nil
	}
	ss.sched.clock.RequestFrame(ss.frame)
	return nil
}

// totalSteps is the real time accumulated so far, in ticks.
func (ss *Session) totalSteps() float64 {
	return ss.elapsed.Seconds() * ss.rate
}

func (ss *Session) stopped() bool {
	return ss.stopping.Load() || ss.ctx.Err() != nil
}

func (ss *Session) fail(hook string, err error) error {
	ss.sched.log.Error("consumer hook failed",
		zap.String("hook", hook),
		zap.Uint64("tick_id", ss.tickID),
		zap.Error(err),
	)
	ss.finish(err)
	return err
}

func (ss *Session) finish(err error) {
	if ss.finished {
		return
	}
	ss.finished = true
	ss.err = err
	ss.sched.log.Info("scheduler stopped",
		zap.Uint64("ticks", ss.tickID),
		zap.Uint64("frames", ss.frames),
	)
	close(ss.done)
}
