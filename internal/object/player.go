package object

import (
	"math"

	"github.com/tomz197/capylabs/internal/config"
	"github.com/tomz197/capylabs/internal/physics"
)

// Player is the turret at the arena center. It only rotates.
type Player struct {
	Heading float64 // Yaw in radians, 0 = +Z
}

// NewPlayer creates a player facing +Z.
func NewPlayer() *Player {
	return &Player{}
}

// Forward returns the unit facing direction.
func (p *Player) Forward() physics.Vec3 {
	return physics.Heading(p.Heading)
}

// Muzzle returns where projectiles leave the player: one unit ahead, at
// projectile height.
func (p *Player) Muzzle() physics.Vec3 {
	m := p.Forward()
	m.Y = config.ProjectileHeight
	return m
}

// Turn rotates the player by rad, keeping Heading in [0, 2π).
func (p *Player) Turn(rad float64) {
	p.Heading = math.Mod(p.Heading+rad, 2*math.Pi)
	if p.Heading < 0 {
		p.Heading += 2 * math.Pi
	}
}

// LookAt turns the player toward point on the horizontal plane. A point
// directly above or below the player is ignored and LookAt reports false.
func (p *Player) LookAt(point physics.Vec3) bool {
	h := point.Horizontal()
	if h.LengthSquared() == 0 {
		return false
	}
	p.Heading = 0
	p.Turn(physics.Yaw(h))
	return true
}
