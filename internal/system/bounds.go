package system

import (
	"github.com/l1jgo/tickframe/internal/core/event"
	coresys "github.com/l1jgo/tickframe/internal/core/system"
	"github.com/l1jgo/tickframe/internal/world"
)

// BoundsSystem reflects bodies off the arena walls and publishes a Bounce for
// each reflection. Phase 2 (Resolve).
type BoundsSystem struct {
	world   *world.World
	bounces *event.Channel[world.Bounce]
}

func NewBoundsSystem(w *world.World, bounces *event.Channel[world.Bounce]) *BoundsSystem {
	return &BoundsSystem{world: w, bounces: bounces}
}

func (s *BoundsSystem) Phase() coresys.Phase { return coresys.PhaseResolve }

func (s *BoundsSystem) Update(step coresys.Step) error {
	s.world.Each(func(b *world.Body) {
		r := b.Radius
		if b.Pos.X < r {
			b.Pos.X = 2*r - b.Pos.X
			b.Vel.X = -b.Vel.X
			s.publish(b, world.WallLeft, step)
		} else if edge := s.world.Width - r; b.Pos.X > edge {
			b.Pos.X = 2*edge - b.Pos.X
			b.Vel.X = -b.Vel.X
			s.publish(b, world.WallRight, step)
		}
		if b.Pos.Y < r {
			b.Pos.Y = 2*r - b.Pos.Y
			b.Vel.Y = -b.Vel.Y
			s.publish(b, world.WallTop, step)
		} else if edge := s.world.Height - r; b.Pos.Y > edge {
			b.Pos.Y = 2*edge - b.Pos.Y
			b.Vel.Y = -b.Vel.Y
			s.publish(b, world.WallBottom, step)
		}
	})
	return nil
}

func (s *BoundsSystem) publish(b *world.Body, wall world.Wall, step coresys.Step) {
	if s.bounces == nil {
		return
	}
	s.bounces.Emit(world.Bounce{Body: b.Name, Wall: wall, TickID: step.TickID, At: b.Pos})
}
