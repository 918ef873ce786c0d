package loop

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ErrInvalidTransition is returned when a state change is not allowed from
// the current state.
var ErrInvalidTransition = errors.New("loop: invalid state transition")

// GameState is the top-level phase of the game.
type GameState int

const (
	StateTitle    GameState = iota // Title screen, waiting for a primary click
	StateInGame                    // A session is running
	StateGameOver                  // Score shown, waiting for a secondary click
)

func (s GameState) String() string {
	switch s {
	case StateTitle:
		return "TITLE"
	case StateInGame:
		return "IN_GAME"
	case StateGameOver:
		return "GAMEOVER"
	default:
		return fmt.Sprintf("GameState(%d)", int(s))
	}
}

// next is the only state each state may move to.
var next = map[GameState]GameState{
	StateTitle:    StateInGame,
	StateInGame:   StateGameOver,
	StateGameOver: StateTitle,
}

func checkTransition(from, to GameState) error {
	if n, ok := next[from]; !ok || n != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Reason says why a session ended.
type Reason int

const (
	ReasonNone      Reason = iota
	ReasonPlayerHit        // An enemy reached the player
	ReasonCleared          // The clear timer elapsed
)

func (r Reason) String() string {
	switch r {
	case ReasonPlayerHit:
		return "player-hit"
	case ReasonCleared:
		return "cleared"
	default:
		return "none"
	}
}

// Transition describes one state change.
type Transition struct {
	From, To  GameState
	Reason    Reason // Set when To is StateGameOver
	Score     int
	SessionID ulid.ULID
}

// Result is the payload carried into GAMEOVER.
type Result struct {
	Score     int
	Reason    Reason
	SessionID ulid.ULID
}
