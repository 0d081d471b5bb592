package system

import (
	coresys "github.com/l1jgo/tickframe/internal/core/system"
	"github.com/l1jgo/tickframe/internal/world"
)

// IntegrateSystem moves every body by velocity × step, remembering the old
// position for render interpolation. Phase 1 (Integrate).
type IntegrateSystem struct {
	world *world.World
}

func NewIntegrateSystem(w *world.World) *IntegrateSystem {
	return &IntegrateSystem{world: w}
}

func (s *IntegrateSystem) Phase() coresys.Phase { return coresys.PhaseIntegrate }

func (s *IntegrateSystem) Update(step coresys.Step) error {
	s.world.Each(func(b *world.Body) {
		b.Prev = b.Pos
		b.Pos = b.Pos.Add(b.Vel.Scale(step.Duration))
	})
	return nil
}
