package loop

import (
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"
	"github.com/tomz197/capylabs/internal/clock"
	"github.com/tomz197/capylabs/internal/config"
	"github.com/tomz197/capylabs/internal/lifecycle"
	"github.com/tomz197/capylabs/internal/object"
	"github.com/tomz197/capylabs/internal/physics"
	"github.com/tomz197/capylabs/internal/scene"
	"github.com/tomz197/capylabs/internal/ui"
)

// Display is the overlay the machine drives.
type Display interface {
	Show(panel ui.Panel, lines ...ui.Line) ui.Token
	ShowScore(total int)
	OnPrimaryClick(fn func()) ui.Token
	OnSecondaryClick(fn func()) ui.Token
	Cancel(tok ui.Token)
}

// Deps are the services a Machine runs against.
type Deps struct {
	Clock   *clock.Clock
	Scene   *scene.Scene
	Display Display
	FX      object.FX
	Logger  *log.Logger
	Rand    *rand.Rand
}

// Option configures a Machine.
type Option func(*Machine)

// WithSpawnOffsets replaces the enemy spawn schedule.
func WithSpawnOffsets(offsets []time.Duration) Option {
	return func(m *Machine) {
		m.offsets = append([]time.Duration(nil), offsets...)
	}
}

// WithClearTime replaces how long a session lasts without a player hit.
func WithClearTime(d time.Duration) Option {
	return func(m *Machine) {
		m.clearTime = d
	}
}

// WithWallClock sets the wall clock used for session timestamps.
func WithWallClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.wall = now
	}
}

// Session is one play-through, from IN_GAME entry to GAMEOVER.
type Session struct {
	ID        ulid.ULID
	StartedAt time.Duration // Clock time at start
	Wall      time.Time
	Score     *object.ScoreTracker

	registry *lifecycle.Registry
	env      *object.Env
	spawner  *object.SpawnScheduler
}

// Active returns the number of live session resources.
func (s *Session) Active() int {
	return s.registry.Active()
}

// Spawned returns how many enemies the session has created.
func (s *Session) Spawned() int {
	return s.spawner.Spawned()
}

// Enemies returns the number of live enemies.
func (s *Session) Enemies() int {
	return s.env.Roster.Enemies()
}

// Machine is the top-level game state machine:
// TITLE -> IN_GAME -> GAMEOVER -> TITLE.
type Machine struct {
	deps    Deps
	logger  *log.Logger
	rng     *rand.Rand
	entropy *ulid.MonotonicEntropy
	wall    func() time.Time

	offsets   []time.Duration
	clearTime time.Duration

	state     GameState
	session   *Session
	player    *object.Player
	steer     float64
	result    Result
	sessions  int
	screen    []ui.Token // title or game-over panel and its click listener
	observers []func(Transition)
}

// NewMachine creates a machine on the title screen.
func NewMachine(deps Deps, opts ...Option) *Machine {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Machine{
		deps:      deps,
		logger:    deps.Logger,
		rng:       deps.Rand,
		wall:      time.Now,
		offsets:   config.SpawnOffsets,
		clearTime: config.ClearTime,
		state:     StateTitle,
		player:    object.NewPlayer(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.entropy = ulid.Monotonic(m.rng, 0)
	m.showTitle()
	return m
}

// State returns the current state.
func (m *Machine) State() GameState {
	return m.state
}

// Session returns the running session, or nil outside IN_GAME.
func (m *Machine) Session() *Session {
	return m.session
}

// Player returns the player turret.
func (m *Machine) Player() *object.Player {
	return m.player
}

// Result returns the payload of the most recent GAMEOVER.
func (m *Machine) Result() Result {
	return m.result
}

// Sessions returns how many sessions have been started.
func (m *Machine) Sessions() int {
	return m.sessions
}

// OnTransition registers fn to observe every state change.
func (m *Machine) OnTransition(fn func(Transition)) {
	m.observers = append(m.observers, fn)
}

// Start moves TITLE -> IN_GAME and starts a new session.
func (m *Machine) Start() error {
	if err := checkTransition(m.state, StateInGame); err != nil {
		m.logger.Warn("start ignored", "err", err)
		return err
	}
	m.clearScreen()

	wall := m.wall()
	reg := lifecycle.New(m.deps.Clock, m.logger)
	s := &Session{
		ID:        ulid.MustNew(ulid.Timestamp(wall), m.entropy),
		StartedAt: m.deps.Clock.Now(),
		Wall:      wall,
		Score:     object.NewScoreTracker(),
		registry:  reg,
	}
	s.env = &object.Env{
		Registry:    reg,
		World:       m.deps.Scene,
		FX:          m.deps.FX,
		Score:       s.Score,
		Roster:      object.NewRoster(),
		Rand:        m.rng,
		OnPlayerHit: func() { m.end(ReasonPlayerHit) },
	}
	m.session = s
	m.sessions++
	m.player.Heading = 0
	m.steer = 0

	d := m.deps.Display
	d.ShowScore(0)
	s.Score.OnChange(d.ShowScore)
	hud := d.Show(ui.PanelHUD, hudLines()...)
	reg.Track(lifecycle.KindDisplay, func() { d.Cancel(hud) })
	fire := d.OnPrimaryClick(m.fire)
	reg.Track(lifecycle.KindInput, func() { d.Cancel(fire) })
	reg.EveryFrame(m.aim)

	s.spawner = object.NewSpawnScheduler(m.offsets, reg, func(int) {
		object.SpawnEnemy(s.env, object.RandomHeading(s.env))
	})
	s.spawner.Start()
	reg.After(m.clearTime, func() { m.end(ReasonCleared) })

	m.state = StateInGame
	m.logger.Info("session started", "session", s.ID)
	m.notify(Transition{From: StateTitle, To: StateInGame, SessionID: s.ID})
	return nil
}

// end moves IN_GAME -> GAMEOVER. It is only reachable from callbacks owned by
// the session registry, and disposing the registry cancels all of them, so
// at most one end runs per session.
func (m *Machine) end(reason Reason) {
	if err := checkTransition(m.state, StateGameOver); err != nil {
		m.logger.Warn("end ignored", "reason", reason, "err", err)
		return
	}
	s := m.session
	res := Result{Score: s.Score.Total(), Reason: reason, SessionID: s.ID}

	s.registry.DisposeAll()
	m.session = nil
	m.result = res
	m.state = StateGameOver

	d := m.deps.Display
	m.screen = append(m.screen,
		d.Show(ui.PanelGameOver, gameOverLines(res)...),
		d.OnSecondaryClick(m.restart),
	)
	m.logger.Info("session ended", "session", s.ID, "reason", reason, "score", res.Score,
		"duration", m.deps.Clock.Now()-s.StartedAt)
	m.notify(Transition{From: StateInGame, To: StateGameOver, Reason: reason, Score: res.Score, SessionID: s.ID})
}

// Restart moves GAMEOVER -> TITLE.
func (m *Machine) Restart() error {
	if err := checkTransition(m.state, StateTitle); err != nil {
		m.logger.Warn("restart ignored", "err", err)
		return err
	}
	m.clearScreen()
	m.state = StateTitle
	m.showTitle()
	m.notify(Transition{From: StateGameOver, To: StateTitle, Score: m.result.Score, SessionID: m.result.SessionID})
	return nil
}

// Steer sets the held aim input: -1 turns left, 1 turns right, 0 stops.
func (m *Machine) Steer(axis float64) {
	m.steer = axis
}

// AimAt turns the player toward a point in the arena. Points the player
// cannot face are ignored.
func (m *Machine) AimAt(point physics.Vec3) {
	if m.state != StateInGame {
		return
	}
	m.player.LookAt(point)
}

// Close ends everything the machine owns without a transition. The machine
// must not be used afterwards.
func (m *Machine) Close() {
	if m.session != nil {
		m.session.registry.DisposeAll()
		m.session = nil
	}
	m.clearScreen()
}

func (m *Machine) showTitle() {
	d := m.deps.Display
	m.screen = append(m.screen,
		d.Show(ui.PanelTitle, titleLines()...),
		d.OnPrimaryClick(m.start),
	)
}

func (m *Machine) clearScreen() {
	for _, tok := range m.screen {
		m.deps.Display.Cancel(tok)
	}
	m.screen = m.screen[:0]
}

func (m *Machine) start() {
	_ = m.Start()
}

func (m *Machine) restart() {
	_ = m.Restart()
}

func (m *Machine) fire() {
	if m.session == nil {
		return
	}
	object.FireProjectile(m.session.env, m.player.Muzzle(), m.player.Forward())
}

func (m *Machine) aim(delta time.Duration) {
	if m.steer == 0 {
		return
	}
	m.player.Turn(m.steer * config.PlayerTurnSpeed * delta.Seconds())
}

func (m *Machine) notify(t Transition) {
	for _, fn := range m.observers {
		fn(t)
	}
}
