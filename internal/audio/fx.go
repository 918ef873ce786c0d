// Package audio synthesizes the game's one-shot sound effects.
//
// Sounds are mixed into a single beep.Mixer. Headless front-ends (SSH, tests)
// drain the mixer with Drain. The local terminal build plays the mix through
// package speakerout instead, which keeps the sound device and its cgo
// dependency out of everything else.
package audio

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SampleRate is the rate of the mixed stream.
const SampleRate = beep.SampleRate(44100)

// Kind selects a sound effect.
type Kind int

const (
	SoundShoot Kind = iota
	SoundExplode
)

func (k Kind) String() string {
	switch k {
	case SoundShoot:
		return "shoot"
	case SoundExplode:
		return "explode"
	default:
		return "unknown"
	}
}

// FX plays fire-and-forget sound effects.
type FX struct {
	mu       sync.Mutex // guards mixer, rng and played; a sink streams from another goroutine
	mixer    *beep.Mixer
	rng      *rand.Rand
	played   map[Kind]int
	attached bool
	logger   *log.Logger

	drainBuf [][2]float64
}

// New creates an FX mixer. rng drives pitch variance; nil uses a time seed.
func New(rng *rand.Rand, logger *log.Logger) *FX {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FX{
		mixer:  &beep.Mixer{},
		rng:    rng,
		played: make(map[Kind]int),
		logger: logger,
	}
}

// PlayOneShot queues one sound. The playback rate is picked uniformly from
// [1 - pitchVariance/2, 1 + pitchVariance/2].
func (f *FX) PlayOneShot(kind Kind, pitchVariance float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if pitchVariance < 0 {
		pitchVariance = 0
	}
	ratio := 1 - pitchVariance/2 + f.rng.Float64()*pitchVariance

	var s beep.Streamer
	switch kind {
	case SoundShoot:
		s = shootSound()
	case SoundExplode:
		s = explodeSound(f.rng)
	default:
		f.logger.Warn("unknown sound", "kind", int(kind))
		return
	}

	f.mixer.Add(beep.ResampleRatio(3, ratio, s))
	f.played[kind]++
}

// Played returns how many times a sound has been queued.
func (f *FX) Played(kind Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.played[kind]
}

// Active returns the number of sounds still playing.
func (f *FX) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mixer.Len()
}

// maxDrain bounds one Drain call. Every sound is shorter than this.
const maxDrain = time.Second

// Drain advances the mix by d and discards the samples. Front-ends without an
// audio device call it once per frame so finished sounds are released.
func (f *FX) Drain(d time.Duration) {
	if d <= 0 {
		return
	}
	n := SampleRate.N(min(d, maxDrain))
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attached {
		return
	}
	if cap(f.drainBuf) < n {
		f.drainBuf = make([][2]float64, n)
	}
	f.mixer.Stream(f.drainBuf[:n])
}

// Attach hands the mix to an external sink, which consumes it through
// Stream. Drain does nothing while a sink is attached.
func (f *FX) Attach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached = true
}

// Detach undoes Attach.
func (f *FX) Detach() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached = false
}

// Stream implements beep.Streamer over the mix. It never runs out: with
// nothing playing it produces silence.
func (f *FX) Stream(samples [][2]float64) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mixer.Stream(samples)
}

// Err implements beep.Streamer.
func (f *FX) Err() error { return nil }

// shootSound is a short falling square-wave blip.
func shootSound() beep.Streamer {
	const d = 90 * time.Millisecond
	osc := &sweep{from: 1200, to: 500, total: SampleRate.N(d), square: true}
	return volume(decay(osc, SampleRate.N(d)), 0.35)
}

// explodeSound is a burst of decaying noise under a low rumble.
func explodeSound(rng *rand.Rand) beep.Streamer {
	const d = 400 * time.Millisecond
	n := SampleRate.N(d)
	noise := &noiseGen{rng: rand.New(rand.NewSource(rng.Int63())), total: n}
	rumble := &sweep{from: 120, to: 40, total: n}
	return volume(decay(beep.Mix(noise, rumble), n), 0.5)
}

// sweep is an oscillator whose frequency slides linearly from -> to.
type sweep struct {
	from, to float64
	total    int
	pos      int
	phase    float64
	square   bool
}

func (s *sweep) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if s.pos >= s.total {
			return i, i > 0
		}
		t := float64(s.pos) / float64(s.total)
		freq := s.from + (s.to-s.from)*t

		val := math.Sin(2 * math.Pi * s.phase)
		if s.square {
			val = 1
			if s.phase >= 0.5 {
				val = -1
			}
		}
		samples[i][0], samples[i][1] = val, val

		s.phase += freq / float64(SampleRate)
		s.phase -= math.Floor(s.phase)
		s.pos++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

type noiseGen struct {
	rng   *rand.Rand
	total int
	pos   int
}

func (g *noiseGen) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if g.pos >= g.total {
			return i, i > 0
		}
		v := g.rng.Float64()*2 - 1
		samples[i][0], samples[i][1] = v, v
		g.pos++
	}
	return len(samples), true
}

func (g *noiseGen) Err() error { return nil }

// decay applies a linear fade-out across total samples.
func decay(s beep.Streamer, total int) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := 0; i < n; i++ {
			gain := 1 - float64(pos)/float64(total)
			if gain < 0 {
				gain = 0
			}
			samples[i][0] *= gain
			samples[i][1] *= gain
			pos++
		}
		return n, ok
	})
}

// volume scales s linearly; 0 silences it.
func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}
