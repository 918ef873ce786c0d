// Package clock provides the frame-driven scheduler that every gameplay
// timer and per-frame hook runs on.
//
// The clock never runs on its own: the frame loop calls Advance once per
// rendered frame. All callbacks execute synchronously on that goroutine.
package clock

import (
	"container/heap"
	"time"
)

// Token identifies a timer or frame hook. The zero Token is never issued.
type Token uint64

// Clock is a manual, single-goroutine scheduler.
type Clock struct {
	now  time.Duration
	next Token

	timers  timerHeap
	pending map[Token]*timer

	hooks     []*hook
	hookIndex map[Token]*hook
	inPass    bool
	dirty     bool // a hook was cancelled during a pass; compact afterwards
}

type timer struct {
	token    Token
	deadline time.Duration
	fn       func()
}

type hook struct {
	token     Token
	fn        func(delta time.Duration)
	cancelled bool
}

// New creates a clock at time zero.
func New() *Clock {
	return &Clock{
		pending:   make(map[Token]*timer),
		hookIndex: make(map[Token]*hook),
	}
}

// Now returns the time elapsed since the clock was created.
func (c *Clock) Now() time.Duration {
	return c.now
}

// After arms fn to run once, d after the current clock time. Timers with
// equal deadlines fire in the order they were armed.
func (c *Clock) After(d time.Duration, fn func()) Token {
	if d < 0 {
		d = 0
	}
	c.next++
	t := &timer{token: c.next, deadline: c.now + d, fn: fn}
	c.pending[t.token] = t
	heap.Push(&c.timers, t)
	return t.token
}

// EveryFrame registers fn to run on every frame pass with the frame delta.
// A hook added during a pass first runs on the next pass.
func (c *Clock) EveryFrame(fn func(delta time.Duration)) Token {
	c.next++
	h := &hook{token: c.next, fn: fn}
	c.hooks = append(c.hooks, h)
	c.hookIndex[h.token] = h
	return h.token
}

// Cancel stops a timer or frame hook. Cancelling an unknown, fired, or
// already cancelled token is a no-op.
func (c *Clock) Cancel(tok Token) {
	if _, ok := c.pending[tok]; ok {
		// left in the heap; skipped when popped
		delete(c.pending, tok)
		return
	}
	h, ok := c.hookIndex[tok]
	if !ok {
		return
	}
	delete(c.hookIndex, tok)
	h.cancelled = true
	if c.inPass {
		c.dirty = true
		return
	}
	c.compact()
}

// Pending returns the number of armed timers plus registered frame hooks.
func (c *Clock) Pending() int {
	return len(c.pending) + len(c.hookIndex)
}

// Advance moves the clock forward by delta, fires every timer that has come
// due, then runs one frame pass.
func (c *Clock) Advance(delta time.Duration) {
	if delta < 0 {
		delta = 0
	}
	c.now += delta
	c.fireDue()
	c.framePass(delta)
}

// fireDue fires due timers in deadline order. Timers armed by a callback
// with a deadline that has already passed fire in the same call.
func (c *Clock) fireDue() {
	for c.timers.Len() > 0 {
		t := c.timers[0]
		if t.deadline > c.now {
			return
		}
		heap.Pop(&c.timers)
		if _, live := c.pending[t.token]; !live {
			continue
		}
		delete(c.pending, t.token)
		t.fn()
	}
}

// framePass runs every live hook once over a snapshot of the hook list.
func (c *Clock) framePass(delta time.Duration) {
	snapshot := make([]*hook, len(c.hooks))
	copy(snapshot, c.hooks)

	c.inPass = true
	for _, h := range snapshot {
		if h.cancelled {
			continue
		}
		h.fn(delta)
	}
	c.inPass = false

	if c.dirty {
		c.compact()
		c.dirty = false
	}
}

// compact drops cancelled hooks, preserving registration order.
func (c *Clock) compact() {
	kept := c.hooks[:0]
	for _, h := range c.hooks {
		if !h.cancelled {
			kept = append(kept, h)
		}
	}
	for i := len(kept); i < len(c.hooks); i++ {
		c.hooks[i] = nil
	}
	c.hooks = kept
}

// timerHeap orders timers by deadline, then by arm order.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].token < h[j].token
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*timer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
