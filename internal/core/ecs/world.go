// Package ecs provides generational entity IDs, typed component stores and
// deferred destruction.
package ecs

// World owns the entity pool, the store registry and a destruction queue
// that is flushed once per tick.
type World struct {
	pool     *EntityPool
	registry *Registry
	queue    []EntityID
	queued   map[EntityID]bool
}

func NewWorld() *World {
	return &World{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
		queued:   make(map[EntityID]bool),
	}
}

func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID { return w.pool.Create() }

func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

func (w *World) Live() int { return w.pool.Live() }

// MarkForDestruction queues id for the next flush. Marking twice, or marking
// a dead entity, has no extra effect.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.pool.Alive(id) || w.queued[id] {
		return
	}
	w.queued[id] = true
	w.queue = append(w.queue, id)
}

// FlushDestroyQueue destroys every queued entity, in the order queued, and
// returns them.
func (w *World) FlushDestroyQueue() []EntityID {
	flushed := w.queue
	for _, id := range flushed {
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
		delete(w.queued, id)
	}
	w.queue = nil
	return flushed
}
