package system

import (
	"github.com/l1jgo/tickframe/internal/core/event"
	coresys "github.com/l1jgo/tickframe/internal/core/system"
	"github.com/l1jgo/tickframe/internal/world"
)

// CleanupSystem ages timed bodies and flushes the deferred removal queue at
// tick end. Phase 3 (Cleanup).
type CleanupSystem struct {
	world     *world.World
	despawned *event.Channel[world.Despawned]
}

func NewCleanupSystem(w *world.World, despawned *event.Channel[world.Despawned]) *CleanupSystem {
	return &CleanupSystem{world: w, despawned: despawned}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(step coresys.Step) error {
	s.world.Age(step.Duration)
	for _, b := range s.world.Flush() {
		if s.despawned != nil {
			s.despawned.Emit(world.Despawned{Body: b.Name, TickID: step.TickID, At: b.Pos})
		}
	}
	return nil
}
