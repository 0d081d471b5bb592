package world

import (
	"slices"
	"unicode/utf8"

	"github.com/l1jgo/tickframe/internal/core/ecs"
	"github.com/l1jgo/tickframe/internal/scene"
)

// Vec2 is a point or velocity in arena units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Lerp(to Vec2, t float64) Vec2 {
	return Vec2{v.X + (to.X-v.X)*t, v.Y + (to.Y-v.Y)*t}
}

// Body is a simulated point mass. Prev holds the position before the last
// completed tick so renders can interpolate between the two.
type Body struct {
	ID     ecs.EntityID
	Name   string
	Pos    Vec2
	Prev   Vec2
	Vel    Vec2
	Radius float64
	Script string
	Glyph  rune
	Color  string
}

// Interpolated returns the render position for a blend factor in [0, 1).
func (b *Body) Interpolated(blend float64) Vec2 {
	return b.Prev.Lerp(b.Pos, blend)
}

// World owns the arena and every body in it. Single-goroutine access only
// (scheduler hooks).
type World struct {
	Width  float64
	Height float64

	ents      *ecs.World
	lifetimes *ecs.Store[float64] // seconds left, bodies with a ttl only
	bodies    []*Body
	byID      map[ecs.EntityID]*Body
	byName    map[string]*Body
	gone      []*Body // filled by unlink during Flush
}

func New(width, height float64) *World {
	w := &World{
		Width:     width,
		Height:    height,
		ents:      ecs.NewWorld(),
		lifetimes: ecs.NewStore[float64](),
		bodies:    make([]*Body, 0, 16),
		byID:      make(map[ecs.EntityID]*Body, 16),
		byName:    make(map[string]*Body, 16),
	}
	w.ents.Registry().Register(w.lifetimes)
	w.ents.Registry().Register(ecs.RemoveFunc(w.unlink))
	return w
}

// FromScene builds a world from a loaded manifest.
func FromScene(sc *scene.Scene) *World {
	w := New(sc.Width, sc.Height)
	for _, spec := range sc.Bodies {
		w.Spawn(spec)
	}
	return w
}

// Spawn adds a body in its starting position. A positive spec.TTL schedules
// it for removal once that much simulated time has passed.
func (w *World) Spawn(spec scene.BodySpec) *Body {
	glyph, _ := utf8.DecodeRuneInString(spec.Glyph)
	if glyph == utf8.RuneError {
		glyph = 'o'
	}
	pos := Vec2{spec.X, spec.Y}
	b := &Body{
		ID:     w.ents.CreateEntity(),
		Name:   spec.Name,
		Pos:    pos,
		Prev:   pos,
		Vel:    Vec2{spec.VX, spec.VY},
		Radius: spec.Radius,
		Script: spec.Script,
		Glyph:  glyph,
		Color:  spec.Color,
	}
	w.bodies = append(w.bodies, b)
	w.byID[b.ID] = b
	w.byName[b.Name] = b
	if spec.TTL > 0 {
		ttl := spec.TTL
		w.lifetimes.Set(b.ID, &ttl)
	}
	return b
}

// Age counts dt seconds off every lifetime and marks expired bodies for
// removal. Nothing leaves the world until Flush.
func (w *World) Age(dt float64) {
	for _, b := range w.bodies {
		left, ok := w.lifetimes.Get(b.ID)
		if !ok {
			continue
		}
		*left -= dt
		if *left <= 0 {
			w.ents.MarkForDestruction(b.ID)
		}
	}
}

// Despawn marks a body for removal at the next Flush.
func (w *World) Despawn(id ecs.EntityID) {
	w.ents.MarkForDestruction(id)
}

// Flush removes every marked body and returns them in marking order.
func (w *World) Flush() []*Body {
	w.gone = nil
	w.ents.FlushDestroyQueue()
	return w.gone
}

func (w *World) unlink(id ecs.EntityID) {
	b, ok := w.byID[id]
	if !ok {
		return
	}
	delete(w.byID, id)
	delete(w.byName, b.Name)
	w.gone = append(w.gone, b)
	w.bodies = slices.DeleteFunc(w.bodies, func(o *Body) bool { return o == b })
}

// Lifetime reports the simulated seconds a body has left, if it has a ttl.
func (w *World) Lifetime(id ecs.EntityID) (float64, bool) {
	left, ok := w.lifetimes.Get(id)
	if !ok {
		return 0, false
	}
	return *left, true
}

// Body looks a body up by name.
func (w *World) Body(name string) (*Body, bool) {
	b, ok := w.byName[name]
	return b, ok
}

// Each visits bodies in spawn order.
func (w *World) Each(fn func(*Body)) {
	for _, b := range w.bodies {
		fn(b)
	}
}

func (w *World) Len() int { return len(w.bodies) }
