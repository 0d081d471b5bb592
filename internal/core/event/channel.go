package event

import (
	"slices"
	"sync"
)

// Handler is a subscribable callback. The pointer is the identity: subscribe
// and unsubscribe with the same *Handler.
type Handler[T any] struct {
	fn func(T)
}

// NewHandler wraps fn so it can be registered on a Channel.
func NewHandler[T any](fn func(T)) *Handler[T] {
	return &Handler[T]{fn: fn}
}

type subscription[T any] struct {
	h   *Handler[T]
	seq uint64
}

// Channel is a typed, synchronous event channel with persistent and one-shot
// subscriptions. Delivery follows subscription order.
//
// The zero value is ready to use. The mutex only protects the subscriber
// set; it is never held while a handler runs, so handlers may subscribe,
// unsubscribe or emit from inside a delivery.
type Channel[T any] struct {
	mu   sync.Mutex
	subs []subscription[T]
	live map[*Handler[T]]uint64        // handler → seq of its current subscription
	once map[*Handler[T]][]*Handler[T] // original → pending one-shot wrappers
	seq  uint64
}

// New returns an empty channel.
func New[T any]() *Channel[T] {
	return &Channel[T]{}
}

// On subscribes h for every future emission. Subscribing an already
// subscribed handler has no effect.
func (c *Channel[T]) On(h *Handler[T]) {
	if h == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(h)
}

// Off unsubscribes h. If h was registered with Once, its pending wrappers are
// removed too. Unknown handlers are ignored.
func (c *Channel[T]) Off(h *Handler[T]) {
	if h == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, w := range c.once[h] {
		c.remove(w)
	}
	delete(c.once, h)
	c.remove(h)
}

// Once subscribes h for the next emission only. The wrapper unsubscribes
// itself before calling h, and Off(h) cancels it before it fires.
func (c *Channel[T]) Once(h *Handler[T]) {
	if h == nil {
		return
	}
	var w *Handler[T]
	w = &Handler[T]{fn: func(ev T) {
		c.mu.Lock()
		c.remove(w)
		c.forget(h, w)
		c.mu.Unlock()
		h.fn(ev)
	}}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.once == nil {
		c.once = make(map[*Handler[T]][]*Handler[T])
	}
	c.once[h] = append(c.once[h], w)
	c.add(w)
}

// Clear drops every subscription, persistent and one-shot.
func (c *Channel[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.subs)
	c.subs = c.subs[:0]
	clear(c.live)
	clear(c.once)
}

// Len reports the number of live subscriptions.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Emit delivers ev to every handler subscribed when the call starts, in
// subscription order, on the calling goroutine. A handler unsubscribed by an
// earlier handler of the same emission is skipped; handlers subscribed during
// the emission are first called on the next one. Unlike iterating the live
// set, a handler removed and re-added mid-emission also waits for the next one.
//
// A panicking handler is not recovered: the remaining handlers of this
// emission are not called and the panic reaches the caller. The channel
// itself stays usable.
func (c *Channel[T]) Emit(ev T) {
	c.mu.Lock()
	snapshot := slices.Clone(c.subs)
	c.mu.Unlock()

	for _, s := range snapshot {
		if !c.subscribed(s) {
			continue
		}
		s.h.fn(ev)
	}
}

func (c *Channel[T]) subscribed(s subscription[T]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq, ok := c.live[s.h]
	return ok && seq == s.seq
}

// add must be called with mu held.
func (c *Channel[T]) add(h *Handler[T]) {
	if _, ok := c.live[h]; ok {
		return
	}
	if c.live == nil {
		c.live = make(map[*Handler[T]]uint64)
	}
	c.seq++
	c.live[h] = c.seq
	c.subs = append(c.subs, subscription[T]{h: h, seq: c.seq})
}

// remove must be called with mu held.
func (c *Channel[T]) remove(h *Handler[T]) {
	if _, ok := c.live[h]; !ok {
		return
	}
	delete(c.live, h)
	c.subs = slices.DeleteFunc(c.subs, func(s subscription[T]) bool {
		return s.h == h
	})
}

// forget drops w from the one-shot index of h. Must be called with mu held.
func (c *Channel[T]) forget(h, w *Handler[T]) {
	ws := slices.DeleteFunc(c.once[h], func(x *Handler[T]) bool { return x == w })
	if len(ws) == 0 {
		delete(c.once, h)
		return
	}
	c.once[h] = ws
}
