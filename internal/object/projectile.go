package object

import (
	"time"

	"github.com/tomz197/capylabs/internal/audio"
	"github.com/tomz197/capylabs/internal/config"
	"github.com/tomz197/capylabs/internal/lifecycle"
	"github.com/tomz197/capylabs/internal/physics"
	"github.com/tomz197/capylabs/internal/scene"
)

// Projectile is a bullet fired by the player.
type Projectile struct {
	ID        scene.Ref
	Position  physics.Vec3
	Direction physics.Vec3 // Unit length, horizontal
	Speed     float64      // Distance units per millisecond

	env   *Env
	alive bool

	entity   lifecycle.Handle
	hook     lifecycle.Handle
	listener lifecycle.Handle
}

// FireProjectile creates a projectile at origin travelling along direction,
// flashes the muzzle and plays the shot sound. A zero direction fires along +Z.
func FireProjectile(env *Env, origin, direction physics.Vec3) *Projectile {
	dir := direction.Horizontal().Normalize()
	if dir == (physics.Vec3{}) {
		dir = physics.Heading(0)
	}

	p := &Projectile{
		Position:  origin,
		Direction: dir,
		Speed:     config.ProjectileSpeed,
		env:       env,
		alive:     true,
	}
	p.ID, p.entity = env.spawn(scene.TemplateProjectile, origin, p.released)
	env.Roster.projectiles[p.ID] = p
	p.hook = env.Registry.EveryFrame(p.update)
	p.listener = env.listen(p.ID, p.onContact)

	muzzleFlash(env, origin)
	env.play(audio.SoundShoot, config.SoundPitchVariance)
	return p
}

// muzzleFlash shows a short-lived, non-colliding flash entity at pos.
func muzzleFlash(env *Env, pos physics.Vec3) {
	_, h := env.spawn(scene.TemplateMuzzleFlash, pos, nil)
	env.Registry.After(config.MuzzleFlashDuration, func() {
		env.Registry.Release(h)
	})
}

// Alive reports whether the projectile is still in play.
func (p *Projectile) Alive() bool {
	return p.alive
}

// Destroy removes the projectile and releases its hook and listener. It is
// idempotent.
func (p *Projectile) Destroy() {
	if !p.alive {
		return
	}
	p.alive = false
	p.env.Registry.Release(p.listener)
	p.env.Registry.Release(p.hook)
	p.env.Registry.Release(p.entity)
}

// released runs when the projectile's entity handle is released, either by
// Destroy or by session disposal.
func (p *Projectile) released() {
	p.alive = false
	delete(p.env.Roster.projectiles, p.ID)
}

func (p *Projectile) update(delta time.Duration) {
	if !p.alive {
		return
	}
	ms := float64(delta) / float64(time.Millisecond)
	p.Position = p.Position.Add(p.Direction.Scale(p.Speed * ms))
	p.env.World.SetPosition(p.ID, p.Position)

	const limit = config.ProjectileVanishDistance
	if p.Position.LengthSquared() > limit*limit {
		p.Destroy()
	}
}

func (p *Projectile) onContact(other scene.Ref) {
	if !p.alive {
		return
	}
	e, ok := p.env.Roster.Enemy(other)
	if !ok || !e.Alive() {
		return
	}
	p.Destroy()
	e.Hit()
}
