package object

import (
	"errors"
	"io"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/capylabs/internal/audio"
	"github.com/tomz197/capylabs/internal/clock"
	"github.com/tomz197/capylabs/internal/config"
	"github.com/tomz197/capylabs/internal/lifecycle"
	"github.com/tomz197/capylabs/internal/physics"
	"github.com/tomz197/capylabs/internal/scene"
)

type recordingFX struct {
	played []audio.Kind
}

func (r *recordingFX) PlayOneShot(kind audio.Kind, _ float64) {
	r.played = append(r.played, kind)
}

func (r *recordingFX) count(kind audio.Kind) int {
	n := 0
	for _, k := range r.played {
		if k == kind {
			n++
		}
	}
	return n
}

type testSession struct {
	env   *Env
	clock *clock.Clock
	scene *scene.Scene
	fx    *recordingFX
	hits  int
}

func newTestSession() *testSession {
	c := clock.New()
	s := &testSession{clock: c, scene: scene.New(), fx: &recordingFX{}}
	s.env = &Env{
		Registry:    lifecycle.New(c, log.New(io.Discard)),
		World:       s.scene,
		FX:          s.fx,
		Score:       NewScoreTracker(),
		Roster:      NewRoster(),
		Rand:        rand.New(rand.NewSource(7)),
		OnPlayerHit: func() { s.hits++ },
	}
	return s
}

// frame runs one simulated frame the way the game loop does.
func (s *testSession) frame(d time.Duration) {
	s.clock.Advance(d)
	s.scene.Step()
}

func TestScoreTrackerRounding(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   int
	}{
		{"exact", 25, 25},
		{"round down", 17.44, 17},
		{"round half up", 2.5, 3},
		{"negative", -4, 0},
		{"nan", math.NaN(), 0},
		{"infinite", math.Inf(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScoreTracker()
			if got := s.Add(tt.amount); got != tt.want {
				t.Errorf("Add(%v) = %d, want %d", tt.amount, got, tt.want)
			}
			if s.Total() != tt.want {
				t.Errorf("Total() = %d, want %d", s.Total(), tt.want)
			}
		})
	}
}

func TestScoreTrackerSaturates(t *testing.T) {
	s := NewScoreTracker()
	if got := s.Add(1e300); got != math.MaxInt {
		t.Errorf("Add(1e300) = %d, want MaxInt", got)
	}
	if got := s.Add(5); got != 0 {
		t.Errorf("Add past the cap = %d, want 0", got)
	}
	if s.Total() != math.MaxInt {
		t.Errorf("Total() = %d, want MaxInt", s.Total())
	}

	s = NewScoreTracker()
	s.Add(10)
	if got := s.Add(float64(math.MaxInt)); got != math.MaxInt-10 || s.Total() != math.MaxInt {
		t.Errorf("Add(MaxInt) after 10 = %d, total %d", got, s.Total())
	}
}

func TestScoreTrackerNotifiesOnChange(t *testing.T) {
	s := NewScoreTracker()
	var seen []int
	s.OnChange(func(total int) { seen = append(seen, total) })
	s.Add(3)
	s.Add(0.2)
	s.Add(4)
	if len(seen) != 2 || seen[0] != 3 || seen[1] != 7 {
		t.Errorf("OnChange saw %v, want [3 7]", seen)
	}
}

func TestProjectileVanishesOutOfBounds(t *testing.T) {
	s := newTestSession()
	p := FireProjectile(s.env, physics.Vec3{Y: config.ProjectileHeight}, physics.Vec3{X: 1})

	if s.fx.count(audio.SoundShoot) != 1 {
		t.Fatalf("expected one shot sound, got %d", s.fx.count(audio.SoundShoot))
	}
	if s.scene.Len() != 2 {
		t.Fatalf("expected projectile and muzzle flash, got %d entities", s.scene.Len())
	}

	for i := 0; i < 3; i++ {
		s.frame(time.Second)
	}
	if !p.Alive() {
		t.Fatalf("projectile vanished early at %v", p.Position)
	}
	if s.scene.Len() != 1 {
		t.Errorf("muzzle flash should be gone after %v", config.MuzzleFlashDuration)
	}

	s.frame(time.Second)
	if p.Alive() {
		t.Fatalf("projectile at distance %.1f still alive", p.Position.Length())
	}
	if s.scene.Len() != 0 || s.scene.Listeners() != 0 {
		t.Errorf("scene not empty: %d entities, %d listeners", s.scene.Len(), s.scene.Listeners())
	}
	if s.env.Registry.Active() != 0 {
		t.Errorf("expected no active handles, got %d", s.env.Registry.Active())
	}
	if s.clock.Pending() != 0 {
		t.Errorf("expected no pending clock work, got %d", s.clock.Pending())
	}
}

func TestProjectileHitAwardsRoundedDistanceOnce(t *testing.T) {
	s := newTestSession()
	e := SpawnEnemy(s.env, 0)

	impact := physics.Vec3{X: 3, Z: 4}
	e.Position = impact
	s.scene.SetPosition(e.ID, impact)
	p := FireProjectile(s.env, impact, physics.Vec3{Z: 1})

	s.scene.Step()
	s.scene.Step()

	if s.env.Score.Total() != 25 {
		t.Errorf("score = %d, want 25", s.env.Score.Total())
	}
	if e.Alive() || p.Alive() {
		t.Errorf("expected both destroyed, enemy=%v projectile=%v", e.Alive(), p.Alive())
	}
	if s.fx.count(audio.SoundExplode) != 1 {
		t.Errorf("explosion played %d times, want 1", s.fx.count(audio.SoundExplode))
	}
	if s.env.Roster.Enemies() != 0 || s.env.Roster.Projectiles() != 0 {
		t.Errorf("roster not empty")
	}
}

func TestProjectileHitsAtLowFrameRate(t *testing.T) {
	s := newTestSession()
	e := SpawnEnemy(s.env, 0) // on +Z, walking toward the origin
	p := FireProjectile(s.env, physics.Vec3{Y: config.ProjectileHeight}, physics.Vec3{Z: 1})

	// 10 FPS: the projectile covers 3 units per frame, more than the depth
	// of the enemy it has to cross
	for i := 0; i < 5; i++ {
		s.frame(100 * time.Millisecond)
	}

	if e.Alive() || p.Alive() {
		t.Fatalf("projectile passed through the enemy: enemy=%v projectile=%v at %v", e.Alive(), p.Alive(), p.Position)
	}
	if got := s.env.Score.Total(); got != 12 {
		t.Errorf("score = %d, want 12", got)
	}
	if s.hits != 0 {
		t.Errorf("enemy reached the player")
	}
}

func TestEnemySpawnsOnCircleFacingCenter(t *testing.T) {
	s := newTestSession()
	e := SpawnEnemy(s.env, math.Pi/2)

	want := physics.Vec3{X: config.EnemySpawnRadius, Y: config.EnemyHeight}
	if physics.DistanceSquared(e.Position, want) > 1e-9 {
		t.Errorf("Position = %v, want %v", e.Position, want)
	}
	if physics.DistanceSquared(e.Facing, physics.Vec3{X: -1}) > 1e-9 {
		t.Errorf("Facing = %v, want -X", e.Facing)
	}
	if pos, ok := s.scene.Position(e.ID); !ok || pos != e.Position {
		t.Errorf("scene position %v does not match enemy %v", pos, e.Position)
	}

	for i := 0; i < 100; i++ {
		yaw := RandomHeading(s.env)
		if yaw < 0 || yaw >= 2*math.Pi {
			t.Fatalf("RandomHeading() = %v out of range", yaw)
		}
	}
}

func TestEnemyReachesPlayer(t *testing.T) {
	s := newTestSession()
	e := SpawnEnemy(s.env, 1)

	// horizontal distance must drop below sqrt(2 - 1.2²) ≈ 0.748
	for i := 0; i < 8; i++ {
		s.frame(100 * time.Millisecond)
	}
	if !e.Alive() || s.hits != 0 {
		t.Fatalf("enemy reached the player too early at %v", e.Position)
	}
	s.frame(100 * time.Millisecond)
	if e.Alive() || s.hits != 1 {
		t.Fatalf("expected player hit, alive=%v hits=%d pos=%v", e.Alive(), s.hits, e.Position)
	}

	s.frame(time.Second)
	if s.hits != 1 {
		t.Errorf("player hit reported %d times", s.hits)
	}
}

func TestEnemyNeverOvershootsCenter(t *testing.T) {
	s := newTestSession()
	e := SpawnEnemy(s.env, 2)

	s.frame(time.Hour)
	if h := e.Position.Horizontal().Length(); h > 1e-9 {
		t.Errorf("enemy overshot, horizontal distance %v", h)
	}
	if s.hits != 1 {
		t.Errorf("expected the clamped enemy to reach the player")
	}
}

func TestEnemyTerminalPathsAreExclusive(t *testing.T) {
	s := newTestSession()
	e := SpawnEnemy(s.env, 0)

	if !e.Hit() {
		t.Fatal("first hit should count")
	}
	if e.Hit() {
		t.Error("second hit should be ignored")
	}
	e.Destroy()
	s.frame(time.Hour)

	if s.hits != 0 {
		t.Error("destroyed enemy reached the player")
	}
	if s.env.Score.Total() != 17 {
		t.Errorf("score = %d, want 17", s.env.Score.Total())
	}
}

func TestSpawnSchedulerFollowsOffsets(t *testing.T) {
	s := newTestSession()
	var order []int
	sched := NewSpawnScheduler(config.SpawnOffsets, s.env.Registry, func(i int) {
		order = append(order, i)
		SpawnEnemy(s.env, RandomHeading(s.env))
	})
	sched.Start()
	sched.Start()

	const step = 50 * time.Millisecond
	for now := time.Duration(0); now <= 7*time.Second; now += step {
		d := step
		if now == 0 {
			d = 0
		}
		s.clock.Advance(d)
		want := 0
		for _, off := range config.SpawnOffsets {
			if off <= now {
				want++
			}
		}
		if sched.Spawned() != want {
			t.Fatalf("at %v: spawned %d, want %d", now, sched.Spawned(), want)
		}
	}
	for i, idx := range order {
		if idx != i {
			t.Fatalf("spawn order %v is not ascending", order)
		}
	}
	if sched.Remaining() != 0 {
		t.Errorf("Remaining() = %d", sched.Remaining())
	}
}

func TestDisposeCancelsPendingSpawns(t *testing.T) {
	s := newTestSession()
	sched := NewSpawnScheduler(config.SpawnOffsets, s.env.Registry, func(int) {
		SpawnEnemy(s.env, RandomHeading(s.env))
	})
	sched.Start()
	s.clock.Advance(time.Second)
	if sched.Spawned() != 3 {
		t.Fatalf("spawned %d after 1s, want 3", sched.Spawned())
	}

	s.env.Registry.DisposeAll()
	s.clock.Advance(10 * time.Second)

	if sched.Spawned() != 3 {
		t.Errorf("spawns continued after dispose: %d", sched.Spawned())
	}
	if s.clock.Pending() != 0 {
		t.Errorf("clock still has %d pending entries", s.clock.Pending())
	}
	if s.scene.Len() != 0 || s.env.Roster.Enemies() != 0 {
		t.Errorf("enemies survived dispose: scene=%d roster=%d", s.scene.Len(), s.env.Roster.Enemies())
	}
}

func TestDisposeAllStopsEveryEntity(t *testing.T) {
	s := newTestSession()
	e := SpawnEnemy(s.env, 0)
	p := FireProjectile(s.env, physics.Vec3{Z: 1, Y: config.ProjectileHeight}, physics.Vec3{X: 1})

	s.env.Registry.DisposeAll()
	s.env.Registry.DisposeAll()

	if e.Alive() || p.Alive() {
		t.Errorf("entities alive after dispose")
	}
	if s.scene.Len() != 0 || s.scene.Listeners() != 0 {
		t.Errorf("scene not empty: %d entities, %d listeners", s.scene.Len(), s.scene.Listeners())
	}
	e.Destroy()
	p.Destroy()
	if e.Hit() {
		t.Error("hit on a disposed enemy counted")
	}
}

func TestDisposeFromPlayerHitStopsOtherEnemies(t *testing.T) {
	s := newTestSession()
	s.env.OnPlayerHit = func() {
		s.hits++
		s.env.Registry.DisposeAll()
	}
	first := SpawnEnemy(s.env, 0)
	second := SpawnEnemy(s.env, math.Pi)

	s.frame(time.Hour)

	if s.hits != 1 {
		t.Errorf("player hit %d times, want 1", s.hits)
	}
	if first.Alive() || second.Alive() {
		t.Error("an enemy survived the session end")
	}
	if s.clock.Pending() != 0 {
		t.Errorf("clock still has %d pending entries", s.clock.Pending())
	}
}

func TestSpawnOnDisposedSessionLeavesNoOrphans(t *testing.T) {
	s := newTestSession()
	s.env.Registry.DisposeAll()

	func() {
		defer func() {
			rec := recover()
			err, ok := rec.(error)
			if !ok || !errors.Is(err, lifecycle.ErrNoSession) {
				t.Fatalf("expected ErrNoSession panic, got %v", rec)
			}
		}()
		SpawnEnemy(s.env, 0)
	}()

	if s.scene.Len() != 0 || s.scene.Listeners() != 0 {
		t.Errorf("scene holds %d entities, %d listeners", s.scene.Len(), s.scene.Listeners())
	}
	if s.clock.Pending() != 0 || s.env.Roster.Enemies() != 0 {
		t.Errorf("orphaned clock work %d or roster entries %d", s.clock.Pending(), s.env.Roster.Enemies())
	}
}

func TestPlayerAim(t *testing.T) {
	p := NewPlayer()
	if p.LookAt(physics.Vec3{Y: 5}) {
		t.Error("LookAt straight up should be ignored")
	}
	if p.Heading != 0 {
		t.Errorf("ignored LookAt changed heading to %v", p.Heading)
	}

	if !p.LookAt(physics.Vec3{X: 2, Y: 1}) {
		t.Fatal("LookAt along +X failed")
	}
	if math.Abs(p.Heading-math.Pi/2) > 1e-9 {
		t.Errorf("Heading = %v, want π/2", p.Heading)
	}

	p.Turn(-math.Pi)
	if p.Heading < 0 || p.Heading >= 2*math.Pi {
		t.Errorf("Heading %v not normalized", p.Heading)
	}
	if physics.DistanceSquared(p.Forward(), physics.Vec3{X: -1}) > 1e-9 {
		t.Errorf("Forward = %v, want -X", p.Forward())
	}
	if m := p.Muzzle(); m.Y != config.ProjectileHeight {
		t.Errorf("Muzzle height = %v", m.Y)
	}
}

func TestExplosionParticlesExpire(t *testing.T) {
	s := newTestSession()
	at := physics.Vec3{X: 2, Y: config.EnemyHeight}
	SpawnExplosion(s.env, at)

	if s.scene.Len() != config.ExplosionParticles {
		t.Fatalf("expected %d particles, got %d", config.ExplosionParticles, s.scene.Len())
	}
	s.frame(100 * time.Millisecond)
	moved := 0
	for _, e := range s.scene.Entities() {
		if e.Template != scene.TemplateParticle {
			t.Fatalf("unexpected entity template %v", e.Template)
		}
		if e.Position != at {
			moved++
		}
	}
	if moved != config.ExplosionParticles {
		t.Errorf("only %d particles moved", moved)
	}

	s.frame(config.ExplosionLifetime)
	if s.scene.Len() != 0 {
		t.Errorf("%d particles outlived their lifetime", s.scene.Len())
	}
	if s.env.Registry.Active() != 0 || s.clock.Pending() != 0 {
		t.Errorf("particles leaked: active=%d pending=%d", s.env.Registry.Active(), s.clock.Pending())
	}
}
