// Package loop runs the game: the top-level state machine that owns play
// sessions, and the frame loop that feeds it input and draws it.
package loop

import (
	"bufio"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/capylabs/internal/audio"
	"github.com/tomz197/capylabs/internal/clock"
	"github.com/tomz197/capylabs/internal/config"
	"github.com/tomz197/capylabs/internal/draw"
	"github.com/tomz197/capylabs/internal/input"
	"github.com/tomz197/capylabs/internal/physics"
	"github.com/tomz197/capylabs/internal/scene"
	"github.com/tomz197/capylabs/internal/ui"
)

// Options configures Run.
type Options struct {
	FPS          int               // Frames per second, config.DefaultFPS if zero
	TermSizeFunc draw.TermSizeFunc // Terminal size source, draw.DefaultTermSizeFunc if nil
	Logger       *log.Logger
	Rand         *rand.Rand
	FX           *audio.FX // Sound output; a silent mixer if nil
	Mouse        bool      // Enable terminal mouse reporting
}

// Game is one player's complete game: services, state machine and view.
type Game struct {
	Clock   *clock.Clock
	Scene   *scene.Scene
	Display *ui.Display
	FX      *audio.FX
	Machine *Machine

	canvas *draw.Canvas
}

// NewGame wires the services and a Machine on the title screen.
func NewGame(opts Options, machineOpts ...Option) *Game {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	fx := opts.FX
	if fx == nil {
		fx = audio.New(rand.New(rand.NewSource(opts.Rand.Int63())), opts.Logger)
	}
	g := &Game{
		Clock:   clock.New(),
		Scene:   scene.New(),
		Display: ui.NewDisplay(),
		FX:      fx,
		canvas:  draw.NewCanvas(80, 24, config.ViewExtent),
	}
	g.Machine = NewMachine(Deps{
		Clock:   g.Clock,
		Scene:   g.Scene,
		Display: g.Display,
		FX:      g.FX,
		Logger:  opts.Logger,
		Rand:    opts.Rand,
	}, machineOpts...)
	return g
}

// Resize sets the terminal size the game draws into.
func (g *Game) Resize(cols, rows int) {
	g.canvas.Resize(cols, rows)
}

// Update applies one frame of input, then advances the simulation by delta:
// timers and frame hooks first, then the contact pass.
func (g *Game) Update(delta time.Duration, in input.Input) {
	for i := 0; i < in.Primary; i++ {
		g.Display.Click(ui.ButtonPrimary)
	}
	for i := 0; i < in.Secondary; i++ {
		g.Display.Click(ui.ButtonSecondary)
	}
	g.Machine.Steer(float64(in.Axis))
	if p, ok := numpadAim(in.Number); ok {
		g.Machine.AimAt(p)
	}
	if in.Pointer.Valid {
		g.Machine.AimAt(g.canvas.ToWorld(in.Pointer.Col, in.Pointer.Row))
	}

	g.Clock.Advance(delta)
	g.Scene.Step()
	g.FX.Drain(delta)
}

// Draw renders the arena and the overlay into w.
func (g *Game) Draw(w *draw.ChunkWriter) error {
	g.canvas.Clear()
	draw.Arena(g.canvas, g.Scene.Entities(), g.Machine.Player().Heading)
	if err := g.canvas.Render(w); err != nil {
		return err
	}

	lines := g.Display.Render(g.canvas.Cols())
	if len(lines) == 0 {
		return nil
	}
	top := 1
	if g.Display.Current() != ui.PanelHUD {
		top = (g.canvas.Rows()-len(lines))/2 + 1
	}
	for i, l := range lines {
		w.WriteAt(1, top+i, l)
	}
	return nil
}

// Close tears down the running session, if any.
func (g *Game) Close() {
	g.Machine.Close()
}

// numpadAim maps digits to compass points laid out like a numeric keypad,
// 8 pointing up the screen. 5 aims at the player itself and is ignored
// downstream.
func numpadAim(n int) (physics.Vec3, bool) {
	if n < 1 || n > 9 {
		return physics.Vec3{}, false
	}
	col := (n-1)%3 - 1
	row := (n-1)/3 - 1
	return physics.Vec3{X: float64(col), Z: float64(row)}, true
}

// Run starts the frame loop with the standard Input → Update → Draw cycle.
// It returns when the player quits or the input stream ends.
func Run(r *bufio.Reader, w io.Writer, opts Options) error {
	if opts.FPS <= 0 {
		opts.FPS = config.DefaultFPS
	}
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = draw.DefaultTermSizeFunc
	}
	frameTime := time.Second / time.Duration(opts.FPS)

	g := NewGame(opts)
	defer g.Close()

	if err := draw.Setup(w, opts.Mouse); err != nil {
		return err
	}
	defer draw.Restore(w, opts.Mouse)

	stream := input.StartStream(r)
	out := draw.NewChunkWriter(w)
	lastTime := time.Now()

	for {
		frameStart := time.Now()
		delta := frameStart.Sub(lastTime)
		lastTime = frameStart

		// ===== INPUT PHASE =====
		in := input.ReadInput(stream)
		if in.Quit || in.Closed {
			return nil
		}
		if cols, rows, err := opts.TermSizeFunc(); err == nil {
			g.Resize(cols, rows)
		}

		// ===== UPDATE PHASE =====
		g.Update(clampDelta(delta, frameTime), in)

		// ===== DRAW PHASE =====
		if err := g.Draw(out); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}

		// ===== FRAME TIMING =====
		elapsed := time.Since(frameStart)
		if elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
	}
}

// maxFrameDelta bounds one simulated frame. A projectile covers 30 units in
// it, so one fired from the center is still inside the arena when the
// contact pass runs.
const maxFrameDelta = time.Second

// clampDelta caps a frame delta so a stalled frame (a suspended terminal, a
// slow SSH link) cannot teleport entities across the arena.
func clampDelta(delta, frameTime time.Duration) time.Duration {
	limit := min(max(4*frameTime, 100*time.Millisecond), maxFrameDelta)
	if delta > limit {
		return limit
	}
	return delta
}
