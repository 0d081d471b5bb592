package sched

import (
	"context"
	"time"
)

// Consumer is driven by a Scheduler. Hooks run on the host goroutine; an
// error returned from any hook ends the session.
type Consumer interface {
	// Preload runs once, before anything else, and may block on slow work.
	Preload(ctx context.Context) error
	// Init runs once after Preload and before the first frame.
	Init() error
	// Tick advances the simulation by one fixed step. tickID is the ordinal
	// of this tick (starting at 1) and runtime the simulated seconds reached
	// once it completes.
	Tick(step, runtime float64, tickID uint64) error
	// Update runs once per frame after all ticks of that frame.
	Update(now time.Duration) error
	// Render runs once per frame. blend in [0, 1) is how far the current
	// moment lies between the last completed tick and the next one.
	Render(blend float64, now time.Duration) error
	// Idle runs once per frame after Render, when the host has spare time.
	Idle(deadline Deadline) error
}
