package object

import (
	"math"
	"time"

	"github.com/tomz197/capylabs/internal/audio"
	"github.com/tomz197/capylabs/internal/config"
	"github.com/tomz197/capylabs/internal/lifecycle"
	"github.com/tomz197/capylabs/internal/physics"
	"github.com/tomz197/capylabs/internal/scene"
)

// Enemy walks from the arena edge toward the player at the center.
type Enemy struct {
	ID       scene.Ref
	Position physics.Vec3
	Facing   physics.Vec3 // Unit length, horizontal, toward the center
	Speed    float64      // Distance units per millisecond

	env   *Env
	alive bool

	entity   lifecycle.Handle
	hook     lifecycle.Handle
	listener lifecycle.Handle
}

// RandomHeading returns a yaw uniformly distributed in [0, 2π).
func RandomHeading(env *Env) float64 {
	return env.Rand.Float64() * 2 * math.Pi
}

// SpawnEnemy places an enemy on the spawn circle along yaw, facing the center.
func SpawnEnemy(env *Env, yaw float64) *Enemy {
	pos := physics.Heading(yaw).Scale(config.EnemySpawnRadius)
	pos.Y = config.EnemyHeight

	e := &Enemy{
		Position: pos,
		Speed:    config.EnemySpeed,
		env:      env,
		alive:    true,
	}
	e.face()
	e.ID, e.entity = env.spawn(scene.TemplateEnemy, pos, e.released)
	env.Roster.enemies[e.ID] = e
	e.hook = env.Registry.EveryFrame(e.update)
	e.listener = env.listen(e.ID, e.onContact)
	return e
}

// Alive reports whether the enemy is still in play.
func (e *Enemy) Alive() bool {
	return e.alive
}

// Destroy removes the enemy and releases its hook and listener. It is
// idempotent.
func (e *Enemy) Destroy() {
	if !e.alive {
		return
	}
	e.alive = false
	e.env.Registry.Release(e.listener)
	e.env.Registry.Release(e.hook)
	e.env.Registry.Release(e.entity)
}

func (e *Enemy) released() {
	e.alive = false
	delete(e.env.Roster.enemies, e.ID)
}

// Hit destroys the enemy, awards the squared distance from the origin as
// score and sets off the explosion. It reports whether the enemy was alive.
func (e *Enemy) Hit() bool {
	if !e.alive {
		return false
	}
	distSq := e.Position.LengthSquared()
	e.Destroy()
	e.env.Score.Add(distSq)
	e.env.play(audio.SoundExplode, config.SoundPitchVariance)
	SpawnExplosion(e.env, e.Position)
	return true
}

// face points the enemy at the center on the horizontal plane.
func (e *Enemy) face() {
	e.Facing = physics.Origin.Sub(e.Position).Horizontal().Normalize()
}

func (e *Enemy) update(delta time.Duration) {
	if !e.alive {
		return
	}
	e.face()

	ms := float64(delta) / float64(time.Millisecond)
	step := e.Speed * ms
	if remaining := e.Position.Horizontal().Length(); step > remaining {
		step = remaining
	}
	e.Position = e.Position.Add(e.Facing.Scale(step))
	e.env.World.SetPosition(e.ID, e.Position)

	if e.Position.LengthSquared() < config.EnemyReachDistanceSquared {
		e.reach()
	}
}

// reach ends the session: the enemy got to the player.
func (e *Enemy) reach() {
	e.Destroy()
	if e.env.OnPlayerHit != nil {
		e.env.OnPlayerHit()
	}
}

func (e *Enemy) onContact(other scene.Ref) {
	if !e.alive {
		return
	}
	p, ok := e.env.Roster.Projectile(other)
	if !ok || !p.Alive() {
		return
	}
	p.Destroy()
	e.Hit()
}
