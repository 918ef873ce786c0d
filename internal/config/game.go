// Package config centralizes all tunable game parameters and runtime settings.
package config

import "time"

// SpawnOffsets are the delays from session start at which one enemy each is
// created, in creation order.
var SpawnOffsets = []time.Duration{
	0,
	150 * time.Millisecond,
	800 * time.Millisecond,
	1500 * time.Millisecond,
	2100 * time.Millisecond,
	2500 * time.Millisecond,
	3500 * time.Millisecond,
	3900 * time.Millisecond,
	4600 * time.Millisecond,
	4700 * time.Millisecond,
	5500 * time.Millisecond,
	6000 * time.Millisecond,
	6200 * time.Millisecond,
	6300 * time.Millisecond,
}

// Session
const (
	ClearTime = 13 * time.Second // Session ends in GAMEOVER after this long without a player hit
)

// Projectiles
const (
	ProjectileSpeed          = 0.03  // Distance units per millisecond
	ProjectileHeight         = 1.7   // Flight height above the floor
	ProjectileVanishDistance = 100.0 // Beyond this distance from the origin a projectile is removed
	ProjectileRadius         = 0.15
	MuzzleFlashDuration      = 50 * time.Millisecond
)

// Enemies
const (
	EnemySpeed                = 0.004 // Distance units per millisecond
	EnemySpawnRadius          = 4.0
	EnemyHeight               = 1.2
	EnemyReachDistanceSquared = 2.0 // Closer than this (squared, from the origin) reaches the player
	EnemyRadius               = 0.6
)

// Player
const (
	PlayerTurnSpeed = 3.0 // Radians per second while an aim key is held
)

// Arena and contact detection
const (
	ArenaExtent     = ProjectileVanishDistance
	ContactCellSize = 2.0 // Must be >= ProjectileRadius + EnemyRadius
)

// Effects
const (
	SoundPitchVariance = 0.3 // Playback rate spread around 1.0 for one-shot sounds
	ExplosionParticles = 8
	ExplosionSpeed     = 0.004 // Distance units per millisecond, before variation
	ExplosionLifetime  = 500 * time.Millisecond
	ParticleDrag       = 0.95 // Velocity kept per 1/60 s
)

// Client rendering
const (
	DefaultFPS = 60
	ViewExtent = 6.0 // Arena half-width shown on screen, in distance units
)
