// Package session provides per-player state, the notification mailbox, and
// the action interpreter that drives a player's game loop.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/caveserver/internal/game/cave"
)

// State is the lifecycle state of a player session.
type State int

// Session states. Dead, Escaped, and Quit are terminal.
const (
	StateAlive State = iota
	StateDead
	StateEscaped
	StateQuit
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateAlive:
		return "alive"
	case StateDead:
		return "dead"
	case StateEscaped:
		return "escaped"
	case StateQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session has ended.
func (s State) Terminal() bool {
	return s != StateAlive
}

// PlayerSession tracks a connected player's state: inventory, current room,
// lifecycle state, and the mailbox other goroutines post notifications into.
// Inventory and room pointer are owned by the session's own goroutine; state
// is synchronized because future cross-session events (a shared-room kill,
// an admin boot) may flip it from outside.
type PlayerSession struct {
	uid     string
	mailbox *Mailbox

	mu    sync.Mutex
	state State

	room   *cave.Room
	gold   int
	arrows int
}

// New creates an alive session with a fresh UID, the given starting arrows,
// and no gold. The caller is responsible for placing it into a room.
//
// Precondition: arrows must be >= 0.
func New(arrows int) *PlayerSession {
	return &PlayerSession{
		uid:     uuid.NewString(),
		mailbox: NewMailbox(),
		state:   StateAlive,
		arrows:  arrows,
	}
}

// UID returns the session's unique identifier. Satisfies cave.Occupant.
func (p *PlayerSession) UID() string {
	return p.uid
}

// Mailbox returns the session's notification mailbox.
func (p *PlayerSession) Mailbox() *Mailbox {
	return p.mailbox
}

// State returns the session's lifecycle state.
func (p *PlayerSession) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Alive reports whether the session is still in play.
func (p *PlayerSession) Alive() bool {
	return p.State() == StateAlive
}

// transition moves the session into a terminal state. The first terminal
// transition wins; later ones are ignored.
func (p *PlayerSession) transition(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateAlive {
		p.state = s
	}
}

// Kill marks the session dead.
func (p *PlayerSession) Kill() {
	p.transition(StateDead)
}

// Room returns the room the player currently occupies.
func (p *PlayerSession) Room() *cave.Room {
	return p.room
}

// SetRoom repoints the session at a room. Occupant bookkeeping is the
// caller's responsibility.
func (p *PlayerSession) SetRoom(r *cave.Room) {
	p.room = r
}

// Gold returns the player's carried gold.
func (p *PlayerSession) Gold() int {
	return p.gold
}

// Arrows returns the player's carried arrows.
func (p *PlayerSession) Arrows() int {
	return p.arrows
}
