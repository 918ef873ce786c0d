// Package scene is the placement and contact service the gameplay core runs
// against: it owns entity positions, and once per frame it reports new
// contacts between colliding entities to registered listeners.
package scene

import (
	"sort"

	"github.com/tomz197/capylabs/internal/config"
	"github.com/tomz197/capylabs/internal/physics"
)

// Ref identifies a spawned entity. The zero Ref is never issued.
type Ref uint64

// Token identifies a collision listener.
type Token uint64

// Template selects what kind of entity to spawn.
type Template int

const (
	TemplateProjectile Template = iota
	TemplateEnemy
	TemplateMuzzleFlash
	TemplateParticle
)

// Radius returns the contact radius for the template, or 0 if it never collides.
func (t Template) Radius() float64 {
	switch t {
	case TemplateProjectile:
		return config.ProjectileRadius
	case TemplateEnemy:
		return config.EnemyRadius
	default:
		return 0
	}
}

// Entity is a read-only view of a spawned entity, used for drawing.
type Entity struct {
	Ref      Ref
	Template Template
	Position physics.Vec3
}

type entity struct {
	ref       Ref
	template  Template
	position  physics.Vec3
	prev      physics.Vec3 // position at the end of the previous Step
	placed    bool
	listeners []*listener
}

type listener struct {
	token   Token
	owner   Ref
	fn      func(other Ref)
	removed bool
}

type pair struct {
	a, b Ref // a < b
}

// Scene holds every live entity and its collision listeners.
type Scene struct {
	nextRef   Ref
	nextToken Token
	entities  map[Ref]*entity
	listeners map[Token]*listener
	contacts  map[pair]struct{}

	grid       *physics.SpatialGrid
	collidable []*entity // reused each Step
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		entities:  make(map[Ref]*entity),
		listeners: make(map[Token]*listener),
		contacts:  make(map[pair]struct{}),
		grid:      physics.NewSpatialGrid(config.ArenaExtent, config.ContactCellSize),
	}
}

// Spawn creates an entity at the origin and returns its ref.
func (s *Scene) Spawn(t Template) Ref {
	s.nextRef++
	s.entities[s.nextRef] = &entity{ref: s.nextRef, template: t}
	return s.nextRef
}

// SetPosition moves an entity. The first call places a new entity without
// sweeping it from the origin. Unknown refs are ignored.
func (s *Scene) SetPosition(ref Ref, p physics.Vec3) {
	e, ok := s.entities[ref]
	if !ok {
		return
	}
	if !e.placed {
		e.prev = p
		e.placed = true
	}
	e.position = p
}

// Position returns an entity's position and whether it still exists.
func (s *Scene) Position(ref Ref) (physics.Vec3, bool) {
	e, ok := s.entities[ref]
	if !ok {
		return physics.Vec3{}, false
	}
	return e.position, true
}

// Destroy removes an entity together with its listeners. Destroying a missing
// entity is a no-op.
func (s *Scene) Destroy(ref Ref) {
	e, ok := s.entities[ref]
	if !ok {
		return
	}
	for _, l := range e.listeners {
		l.removed = true
		delete(s.listeners, l.token)
	}
	delete(s.entities, ref)
}

// Len returns the number of live entities.
func (s *Scene) Len() int {
	return len(s.entities)
}

// Listeners returns the number of registered collision listeners.
func (s *Scene) Listeners() int {
	return len(s.listeners)
}

// Entities returns a snapshot of all live entities ordered by ref.
func (s *Scene) Entities() []Entity {
	out := make([]Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, Entity{Ref: e.ref, Template: e.template, Position: e.position})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}

// OnCollision registers fn to be told about every new contact involving ref.
// Registering on a missing entity returns a token that is already inert.
func (s *Scene) OnCollision(ref Ref, fn func(other Ref)) Token {
	s.nextToken++
	l := &listener{token: s.nextToken, owner: ref, fn: fn}
	e, ok := s.entities[ref]
	if !ok {
		l.removed = true
		return l.token
	}
	e.listeners = append(e.listeners, l)
	s.listeners[l.token] = l
	return l.token
}

// RemoveListener unregisters a collision listener. It is idempotent.
func (s *Scene) RemoveListener(tok Token) {
	l, ok := s.listeners[tok]
	if !ok {
		return
	}
	l.removed = true
	delete(s.listeners, tok)
	if e, ok := s.entities[l.owner]; ok {
		kept := e.listeners[:0]
		for _, other := range e.listeners {
			if other != l {
				kept = append(kept, other)
			}
		}
		e.listeners = kept
	}
}
