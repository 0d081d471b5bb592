package game

import "time"

// Resized is published when the render surface changes size.
type Resized struct {
	Columns int
	Rows    int
}

// FrameStats is published from the idle hook once per frame.
type FrameStats struct {
	Frames     uint64
	TickID     uint64
	Runtime    float64
	Blend      float64
	FPS        float64
	IdleBudget time.Duration
}
