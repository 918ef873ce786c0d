package audio

import (
	"go/parser"
	"go/token"
	"io"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func newTestFX() *FX {
	return New(rand.New(rand.NewSource(1)), log.New(io.Discard))
}

func TestPlayOneShotQueuesAndDrains(t *testing.T) {
	fx := newTestFX()
	fx.PlayOneShot(SoundShoot, 0.3)
	fx.PlayOneShot(SoundExplode, 0.3)

	if fx.Active() != 2 {
		t.Fatalf("expected 2 active sounds, got %d", fx.Active())
	}
	if fx.Played(SoundShoot) != 1 || fx.Played(SoundExplode) != 1 {
		t.Errorf("unexpected play counts: shoot=%d explode=%d", fx.Played(SoundShoot), fx.Played(SoundExplode))
	}

	fx.Drain(2 * time.Second)
	if fx.Active() != 0 {
		t.Errorf("expected sounds to finish after draining, %d still active", fx.Active())
	}
}

func TestPlayOneShotUnknownKindIgnored(t *testing.T) {
	fx := newTestFX()
	fx.PlayOneShot(Kind(42), 0.3)
	if fx.Active() != 0 {
		t.Errorf("unknown sound should not be queued")
	}
}

func TestSweepProducesBoundedSamples(t *testing.T) {
	s := &sweep{from: 440, to: 220, total: 100}
	buf := make([][2]float64, 64)

	n, ok := s.Stream(buf)
	if n != 64 || !ok {
		t.Fatalf("first chunk: n=%d ok=%v", n, ok)
	}
	n, ok = s.Stream(buf)
	if n != 36 || !ok {
		t.Fatalf("second chunk: n=%d ok=%v", n, ok)
	}
	n, ok = s.Stream(buf)
	if n != 0 || ok {
		t.Fatalf("drained sweep: n=%d ok=%v", n, ok)
	}
	for i := 0; i < 36; i++ {
		if buf[i][0] < -1 || buf[i][0] > 1 {
			t.Fatalf("sample %d out of range: %v", i, buf[i][0])
		}
	}
}

func TestAttachedSinkConsumesTheMix(t *testing.T) {
	fx := newTestFX()
	fx.Attach()
	fx.PlayOneShot(SoundShoot, 0)

	fx.Drain(2 * time.Second)
	if fx.Active() != 1 {
		t.Fatalf("Drain consumed the mix while a sink was attached")
	}

	buf := make([][2]float64, SampleRate.N(time.Second))
	if n, ok := fx.Stream(buf); n != len(buf) || !ok {
		t.Fatalf("Stream = %d, %v; the mix should never run dry", n, ok)
	}
	if fx.Active() != 0 {
		t.Errorf("sink did not play the sound out, %d still active", fx.Active())
	}

	fx.Detach()
	fx.PlayOneShot(SoundShoot, 0)
	fx.Drain(time.Second)
	if fx.Active() != 0 {
		t.Errorf("Drain should work again after Detach")
	}
}

// The sound device backend needs cgo. Everything that plays sounds reaches
// beep through this package, so it must stay free of the speaker.
func TestPackageDoesNotLinkSpeaker(t *testing.T) {
	files, err := filepath.Glob("*.go")
	if err != nil {
		t.Fatal(err)
	}
	fset := token.NewFileSet()
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, name, nil, parser.ImportsOnly)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		for _, imp := range f.Imports {
			path, _ := strconv.Unquote(imp.Path.Value)
			if strings.HasSuffix(path, "/speaker") {
				t.Errorf("%s imports %s", name, path)
			}
		}
	}
}
