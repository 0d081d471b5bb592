package system

import (
	coresys "github.com/l1jgo/tickframe/internal/core/system"
	"github.com/l1jgo/tickframe/internal/scripting"
	"github.com/l1jgo/tickframe/internal/world"
)

// SteerSystem lets each scripted body pick its velocity for the coming step,
// or ask to be despawned at tick end. Phase 0 (Steer).
type SteerSystem struct {
	world   *world.World
	scripts *scripting.Engine
}

func NewSteerSystem(w *world.World, scripts *scripting.Engine) *SteerSystem {
	return &SteerSystem{world: w, scripts: scripts}
}

func (s *SteerSystem) Phase() coresys.Phase { return coresys.PhaseSteer }

func (s *SteerSystem) Update(step coresys.Step) error {
	var err error
	s.world.Each(func(b *world.Body) {
		if err != nil || b.Script == "" {
			return
		}
		ttl, hasTTL := s.world.Lifetime(b.ID)
		var res scripting.SteerResult
		res, err = s.scripts.Steer(b.Script, scripting.SteerContext{
			Body:    b.Name,
			X:       b.Pos.X,
			Y:       b.Pos.Y,
			VX:      b.Vel.X,
			VY:      b.Vel.Y,
			Width:   s.world.Width,
			Height:  s.world.Height,
			Step:    step.Duration,
			Runtime: step.Runtime,
			TickID:  step.TickID,
			TTL:     ttl,
			HasTTL:  hasTTL,
		})
		if err != nil {
			return
		}
		b.Vel = world.Vec2{X: res.VX, Y: res.VY}
		if res.Despawn {
			s.world.Despawn(b.ID)
		}
	})
	return err
}
