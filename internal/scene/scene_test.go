package scene

import (
	"testing"

	"github.com/tomz197/capylabs/internal/physics"
)

func TestSpawnPositionDestroy(t *testing.T) {
	s := New()
	ref := s.Spawn(TemplateEnemy)
	s.SetPosition(ref, physics.Vec3{X: 1, Y: 2, Z: 3})

	p, ok := s.Position(ref)
	if !ok || p != (physics.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("Position = %v, %v", p, ok)
	}

	s.Destroy(ref)
	s.Destroy(ref) // idempotent
	if _, ok := s.Position(ref); ok {
		t.Error("destroyed entity still has a position")
	}
	if s.Len() != 0 {
		t.Errorf("expected empty scene, got %d", s.Len())
	}
	s.SetPosition(ref, physics.Vec3{}) // ignored
}

func TestStepReportsContactOncePerBegin(t *testing.T) {
	s := New()
	a := s.Spawn(TemplateProjectile)
	b := s.Spawn(TemplateEnemy)
	s.SetPosition(a, physics.Vec3{X: 3})
	s.SetPosition(b, physics.Vec3{X: 0})

	var hitsA, hitsB []Ref
	s.OnCollision(a, func(o Ref) { hitsA = append(hitsA, o) })
	s.OnCollision(b, func(o Ref) { hitsB = append(hitsB, o) })

	s.Step()
	if len(hitsA) != 0 {
		t.Fatalf("separated entities reported contact")
	}

	s.SetPosition(a, physics.Vec3{X: 0.5})
	s.Step()
	s.Step() // still overlapping, no new notification
	if len(hitsA) != 1 || hitsA[0] != b {
		t.Errorf("hitsA = %v, want [%d]", hitsA, b)
	}
	if len(hitsB) != 1 || hitsB[0] != a {
		t.Errorf("hitsB = %v, want [%d]", hitsB, a)
	}

	s.SetPosition(a, physics.Vec3{X: 5})
	s.Step()
	s.SetPosition(a, physics.Vec3{X: 0.1})
	s.Step()
	if len(hitsA) != 2 {
		t.Errorf("expected a second contact after separating, got %d", len(hitsA))
	}
}

func TestStepCatchesFastMoverBetweenFrames(t *testing.T) {
	s := New()
	bullet := s.Spawn(TemplateProjectile)
	enemy := s.Spawn(TemplateEnemy)
	s.SetPosition(bullet, physics.Vec3{Y: 1.7, Z: 1})
	s.SetPosition(enemy, physics.Vec3{Y: 1.2, Z: 3})

	var hits []Ref
	s.OnCollision(bullet, func(o Ref) { hits = append(hits, o) })
	s.OnCollision(enemy, func(o Ref) { hits = append(hits, o) })

	s.Step()
	if len(hits) != 0 {
		t.Fatalf("separated entities reported contact: %v", hits)
	}

	// one slow frame carries the bullet from in front of the enemy to far
	// behind it
	s.SetPosition(bullet, physics.Vec3{Y: 1.7, Z: 16})
	s.Step()
	if len(hits) != 2 {
		t.Fatalf("expected the crossing to be reported to both sides, got %v", hits)
	}

	s.Step()
	if len(hits) != 2 {
		t.Errorf("a pair that already separated was reported again: %v", hits)
	}
}

func TestNewEntityIsNotSweptFromOrigin(t *testing.T) {
	s := New()
	enemy := s.Spawn(TemplateEnemy)
	s.SetPosition(enemy, physics.Vec3{X: -0.2})
	bullet := s.Spawn(TemplateProjectile)
	s.SetPosition(bullet, physics.Vec3{X: 10})

	called := false
	s.OnCollision(bullet, func(Ref) { called = true })
	s.Step()
	if called {
		t.Error("an entity placed after spawning was swept from the origin")
	}
}

func TestListenerRemovedByEarlierCallbackIsSkipped(t *testing.T) {
	s := New()
	a := s.Spawn(TemplateProjectile)
	b := s.Spawn(TemplateEnemy)

	bCalled := false
	s.OnCollision(a, func(o Ref) { s.Destroy(o) })
	s.OnCollision(b, func(Ref) { bCalled = true })

	s.Step()
	if bCalled {
		t.Error("listener of an entity destroyed earlier in the pass was called")
	}
	if s.Listeners() != 1 {
		t.Errorf("expected only a's listener to remain, got %d", s.Listeners())
	}
}

func TestRemoveListener(t *testing.T) {
	s := New()
	a := s.Spawn(TemplateEnemy)
	b := s.Spawn(TemplateEnemy)
	called := 0
	tok := s.OnCollision(a, func(Ref) { called++ })
	s.RemoveListener(tok)
	s.RemoveListener(tok)
	s.SetPosition(b, physics.Vec3{X: 0.2})

	s.Step()
	if called != 0 {
		t.Errorf("removed listener called %d times", called)
	}
	if s.Listeners() != 0 {
		t.Errorf("expected no listeners, got %d", s.Listeners())
	}

	dead := s.OnCollision(Ref(999), func(Ref) { called++ })
	s.RemoveListener(dead)
	if s.Listeners() != 0 {
		t.Errorf("listener on a missing entity should be inert")
	}
}

func TestNonCollidingTemplatesIgnored(t *testing.T) {
	s := New()
	flash := s.Spawn(TemplateMuzzleFlash)
	enemy := s.Spawn(TemplateEnemy)
	called := false
	s.OnCollision(flash, func(Ref) { called = true })
	s.OnCollision(enemy, func(Ref) { called = true })

	s.Step()
	if called {
		t.Error("muzzle flash should never collide")
	}
	if got := len(s.Entities()); got != 2 {
		t.Errorf("Entities() returned %d, want 2", got)
	}
}
