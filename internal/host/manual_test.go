package host

import (
	"errors"
	"testing"
	"time"

	"github.com/l1jgo/tickframe/internal/core/sched"
	"go.uber.org/multierr"
)

func TestManualFrameOrder(t *testing.T) {
	m := NewManual(10*time.Millisecond, 3*time.Millisecond)
	var got []string

	m.RequestFrame(func(now time.Duration) error {
		got = append(got, "frame")
		if now != 25*time.Millisecond {
			t.Errorf("frame now = %v", now)
		}
		m.RequestIdle(func(d sched.Deadline) error {
			got = append(got, "idle")
			if d.TimeRemaining() != 3*time.Millisecond || d.DidTimeout() {
				t.Errorf("deadline = %v/%v", d.TimeRemaining(), d.DidTimeout())
			}
			m.RequestIdle(func(sched.Deadline) error {
				got = append(got, "late idle")
				return nil
			})
			return nil
		})
		return nil
	})

	if err := m.Step(15 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "frame" || got[1] != "idle" {
		t.Fatalf("order = %v", got)
	}
	if f, i := m.Pending(); f != 0 || i != 1 {
		t.Fatalf("pending = %d frames, %d idles", f, i)
	}

	if err := m.Frame(30 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if got[2] != "late idle" {
		t.Fatalf("order = %v", got)
	}
}

func TestManualAdvance(t *testing.T) {
	m := NewManual(0, 0)
	m.Advance(time.Second)
	if m.Now() != time.Second {
		t.Fatalf("now = %v", m.Now())
	}
}

func TestManualCombinesErrors(t *testing.T) {
	m := NewManual(0, 0)
	errA := errors.New("a")
	errB := errors.New("b")
	m.RequestFrame(func(time.Duration) error { return errA })
	m.RequestFrame(func(time.Duration) error { return nil })
	m.RequestIdle(func(sched.Deadline) error { return errB })

	err := m.Step(time.Millisecond)
	if len(multierr.Errors(err)) != 2 || !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("err = %v", err)
	}
}
