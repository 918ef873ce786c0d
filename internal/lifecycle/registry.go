// Package lifecycle owns every timer, frame hook, collision listener, display
// handle and entity created during one play session, and guarantees each is
// released exactly once.
//
// A Registry is the only teardown path for session resources: components
// never keep their own cleanup lists. DisposeAll may be called from inside a
// callback that is itself one of the registered handles.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/capylabs/internal/clock"
)

// ErrNoSession is raised (as a panic) when something tries to register a
// resource on a registry whose session has already been disposed. It always
// indicates a lifecycle bug.
var ErrNoSession = errors.New("lifecycle: no active session")

// Handle identifies one registered resource. The zero Handle is never issued.
type Handle uint64

// Kind labels what a handle refers to. It is informational only.
type Kind int

const (
	KindTimer Kind = iota
	KindFrameHook
	KindCollision
	KindDisplay
	KindEntity
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindTimer:
		return "timer"
	case KindFrameHook:
		return "frame-hook"
	case KindCollision:
		return "collision"
	case KindDisplay:
		return "display"
	case KindEntity:
		return "entity"
	case KindInput:
		return "input"
	default:
		return "unknown"
	}
}

// Clock is the scheduling service the registry wraps timers and hooks around.
type Clock interface {
	After(d time.Duration, fn func()) clock.Token
	EveryFrame(fn func(delta time.Duration)) clock.Token
	Cancel(tok clock.Token)
}

type entry struct {
	kind    Kind
	release func()
}

// Registry tracks the resources of a single session.
type Registry struct {
	clock  Clock
	logger *log.Logger

	next     Handle
	entries  map[Handle]entry
	order    []Handle // registration order; may hold released handles
	disposed bool
}

// New creates an open registry for a new session.
func New(c Clock, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		clock:   c,
		logger:  logger,
		entries: make(map[Handle]entry),
	}
}

// Track registers a resource whose release function must run exactly once,
// either through Release or DisposeAll. It panics with ErrNoSession if the
// registry has already been disposed.
func (r *Registry) Track(kind Kind, release func()) Handle {
	if r.disposed {
		panic(fmt.Errorf("%w: register %s", ErrNoSession, kind))
	}
	r.next++
	h := r.next
	r.entries[h] = entry{kind: kind, release: release}
	r.order = append(r.order, h)
	return h
}

// After arms a one-shot timer. The handle releases itself when the timer
// fires, so a fired timer no longer counts as active. The handle is taken
// before the clock is armed: on a disposed registry nothing is left running.
func (r *Registry) After(d time.Duration, fn func()) Handle {
	var tok clock.Token
	h := r.Track(KindTimer, func() { r.clock.Cancel(tok) })
	tok = r.clock.After(d, func() {
		r.Release(h)
		fn()
	})
	return h
}

// EveryFrame registers a per-frame hook.
func (r *Registry) EveryFrame(fn func(delta time.Duration)) Handle {
	var tok clock.Token
	h := r.Track(KindFrameHook, func() { r.clock.Cancel(tok) })
	tok = r.clock.EveryFrame(fn)
	return h
}

// Release releases a single handle early. Releasing an unknown or already
// released handle is a no-op.
func (r *Registry) Release(h Handle) {
	e, ok := r.entries[h]
	if !ok {
		return
	}
	delete(r.entries, h)
	e.release()
	r.maybeCompact()
}

// DisposeAll releases every live handle exactly once, newest first. It is
// idempotent and safe to call from inside a registered callback: the table is
// detached before any release runs, so nested Release or DisposeAll calls
// observe an empty registry.
func (r *Registry) DisposeAll() {
	if r.disposed {
		return
	}
	r.disposed = true

	entries, order := r.entries, r.order
	r.entries = make(map[Handle]entry)
	r.order = nil

	released := 0
	for i := len(order) - 1; i >= 0; i-- {
		e, ok := entries[order[i]]
		if !ok {
			continue
		}
		delete(entries, order[i])
		e.release()
		released++
	}
	r.logger.Debug("session resources disposed", "released", released)
}

// Active returns the number of handles not yet released.
func (r *Registry) Active() int {
	return len(r.entries)
}

// Disposed reports whether DisposeAll has run.
func (r *Registry) Disposed() bool {
	return r.disposed
}

// maybeCompact trims released handles out of the order slice once they
// dominate it, keeping Track amortized O(1) and memory bounded.
func (r *Registry) maybeCompact() {
	if len(r.order) < 64 || len(r.order) < 2*len(r.entries) {
		return
	}
	kept := r.order[:0]
	for _, h := range r.order {
		if _, ok := r.entries[h]; ok {
			kept = append(kept, h)
		}
	}
	r.order = kept
}
