package object

import (
	"math"
	"time"

	"github.com/tomz197/capylabs/internal/config"
	"github.com/tomz197/capylabs/internal/lifecycle"
	"github.com/tomz197/capylabs/internal/physics"
	"github.com/tomz197/capylabs/internal/scene"
)

// Particle is a short-lived, non-colliding piece of explosion debris.
type Particle struct {
	ID       scene.Ref
	Position physics.Vec3
	Velocity physics.Vec3 // Distance units per millisecond
	Drag     float64      // Velocity kept per 1/60 s (1.0 = no drag)

	env    *Env
	entity lifecycle.Handle
	hook   lifecycle.Handle
}

// SpawnExplosion bursts debris outward from at on the horizontal plane. Each
// particle removes itself when its lifetime runs out.
func SpawnExplosion(env *Env, at physics.Vec3) {
	for i := 0; i < config.ExplosionParticles; i++ {
		// Random direction, speed 50% to 150%, lifetime 50% to 100%
		dir := physics.Heading(env.Rand.Float64() * 2 * math.Pi)
		speed := config.ExplosionSpeed * (0.5 + env.Rand.Float64())
		life := time.Duration(float64(config.ExplosionLifetime) * (0.5 + env.Rand.Float64()*0.5))
		newParticle(env, at, dir.Scale(speed), life)
	}
}

func newParticle(env *Env, at, velocity physics.Vec3, life time.Duration) *Particle {
	p := &Particle{
		Position: at,
		Velocity: velocity,
		Drag:     config.ParticleDrag,
		env:      env,
	}
	p.ID, p.entity = env.spawn(scene.TemplateParticle, at, nil)
	p.hook = env.Registry.EveryFrame(p.update)
	env.Registry.After(life, p.expire)
	return p
}

func (p *Particle) update(delta time.Duration) {
	ms := float64(delta) / float64(time.Millisecond)
	p.Velocity = p.Velocity.Scale(math.Pow(p.Drag, ms*60/1000))
	p.Position = p.Position.Add(p.Velocity.Scale(ms))
	p.env.World.SetPosition(p.ID, p.Position)
}

func (p *Particle) expire() {
	p.env.Registry.Release(p.hook)
	p.env.Registry.Release(p.entity)
}
