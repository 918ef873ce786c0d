// Package object holds the gameplay entities of a session: the player,
// projectiles, enemies, their spawn schedule and the score they produce.
//
// Every entity registers its scene entity, frame hook and collision listener
// with the session's lifecycle.Registry, so disposing the registry stops all
// of them at once.
package object

import (
	"math/rand"
	"sort"

	"github.com/tomz197/capylabs/internal/audio"
	"github.com/tomz197/capylabs/internal/lifecycle"
	"github.com/tomz197/capylabs/internal/physics"
	"github.com/tomz197/capylabs/internal/scene"
)

// Placement spawns, moves and removes scene entities.
type Placement interface {
	Spawn(t scene.Template) scene.Ref
	SetPosition(ref scene.Ref, p physics.Vec3)
	Position(ref scene.Ref) (physics.Vec3, bool)
	Destroy(ref scene.Ref)
}

// Collisions reports contacts between scene entities.
type Collisions interface {
	OnCollision(ref scene.Ref, fn func(other scene.Ref)) scene.Token
	RemoveListener(tok scene.Token)
}

// World is the scene as seen by gameplay code.
type World interface {
	Placement
	Collisions
}

// FX plays fire-and-forget sound effects.
type FX interface {
	PlayOneShot(kind audio.Kind, pitchVariance float64)
}

// Env is everything an entity needs from its session.
type Env struct {
	Registry *lifecycle.Registry
	World    World
	FX       FX
	Score    *ScoreTracker
	Roster   *Roster
	Rand     *rand.Rand

	// OnPlayerHit is called after an enemy reaches the player.
	OnPlayerHit func()
}

func (env *Env) play(kind audio.Kind, pitchVariance float64) {
	if env.FX != nil {
		env.FX.PlayOneShot(kind, pitchVariance)
	}
}

// spawn creates a scene entity owned by the registry, so that disposal
// removes it. onRelease runs after the entity is gone. The handle is taken
// before the entity exists: a disposed registry panics without leaving an
// orphan in the scene.
func (env *Env) spawn(t scene.Template, at physics.Vec3, onRelease func()) (scene.Ref, lifecycle.Handle) {
	var ref scene.Ref
	h := env.Registry.Track(lifecycle.KindEntity, func() {
		env.World.Destroy(ref)
		if onRelease != nil {
			onRelease()
		}
	})
	ref = env.World.Spawn(t)
	env.World.SetPosition(ref, at)
	return ref, h
}

// listen registers a collision listener on ref with the registry.
func (env *Env) listen(ref scene.Ref, fn func(other scene.Ref)) lifecycle.Handle {
	var tok scene.Token
	h := env.Registry.Track(lifecycle.KindCollision, func() {
		env.World.RemoveListener(tok)
	})
	tok = env.World.OnCollision(ref, fn)
	return h
}

// Roster maps scene refs back to the live gameplay entities that own them.
type Roster struct {
	enemies     map[scene.Ref]*Enemy
	projectiles map[scene.Ref]*Projectile
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{
		enemies:     make(map[scene.Ref]*Enemy),
		projectiles: make(map[scene.Ref]*Projectile),
	}
}

// Enemy returns the live enemy owning ref.
func (r *Roster) Enemy(ref scene.Ref) (*Enemy, bool) {
	e, ok := r.enemies[ref]
	return e, ok
}

// Projectile returns the live projectile owning ref.
func (r *Roster) Projectile(ref scene.Ref) (*Projectile, bool) {
	p, ok := r.projectiles[ref]
	return p, ok
}

// Enemies returns the number of live enemies.
func (r *Roster) Enemies() int { return len(r.enemies) }

// Projectiles returns the number of live projectiles.
func (r *Roster) Projectiles() int { return len(r.projectiles) }

// LiveEnemies returns the live enemies ordered by spawn.
func (r *Roster) LiveEnemies() []*Enemy {
	out := make([]*Enemy, 0, len(r.enemies))
	for _, e := range r.enemies {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
