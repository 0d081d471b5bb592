package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/l1jgo/tickframe/internal/core/sched"
	"go.uber.org/zap/zaptest"
)

type counter struct {
	ticks  uint64
	frames int
	stop   func()
}

func (c *counter) Preload(context.Context) error { return nil }
func (c *counter) Init() error                   { return nil }
func (c *counter) Tick(_, _ float64, id uint64) error {
	c.ticks = id
	return nil
}
func (c *counter) Update(time.Duration) error { return nil }
func (c *counter) Render(float64, time.Duration) error {
	c.frames++
	if c.frames == 5 {
		c.stop()
	}
	return nil
}
func (c *counter) Idle(sched.Deadline) error { return nil }

func TestNewLoopRejectsRate(t *testing.T) {
	for _, rate := range []float64{0, -30} {
		if _, err := NewLoop(rate, nil); err == nil {
			t.Errorf("rate %v accepted", rate)
		}
	}
}

func TestLoopDrivesScheduler(t *testing.T) {
	l, err := NewLoop(500, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if l.Interval() != 2*time.Millisecond {
		t.Fatalf("interval = %v", l.Interval())
	}

	c := &counter{}
	ss, err := sched.New(l, l).Run(context.Background(), c, 1000)
	if err != nil {
		t.Fatal(err)
	}
	c.stop = ss.Stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	select {
	case <-ss.Done():
	default:
		t.Fatal("session still running after loop drained")
	}
	if c.frames != 5 {
		t.Fatalf("frames = %d, want 5", c.frames)
	}
	if c.ticks == 0 {
		t.Fatal("no ticks after five real frames")
	}
}

func TestLoopReportsCallbackErrors(t *testing.T) {
	l, err := NewLoop(1000, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	l.RequestFrame(func(time.Duration) error {
		l.RequestIdle(func(sched.Deadline) error { return nil })
		return boom
	})
	if err := l.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoopCancel(t *testing.T) {
	l, err := NewLoop(1, nil)
	if err != nil {
		t.Fatal(err)
	}
	l.RequestFrame(func(time.Duration) error { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
