// Package dispatcher accepts player connections and runs one session loop per
// connection against the shared cave.
package dispatcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/caveserver/internal/game/session"
	"github.com/cory-johannsen/caveserver/internal/telnet"
)

// Dispatcher implements telnet.SessionHandler. For each connection it builds
// a PlayerSession bound to a random starting room and drives the session loop
// until a terminal state or disconnect.
type Dispatcher struct {
	interp *session.Interpreter
	rules  session.Rules
	logger *zap.Logger
}

// New creates a Dispatcher.
//
// Precondition: interp and logger must be non-nil.
func New(interp *session.Interpreter, rules session.Rules, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		interp: interp,
		rules:  rules,
		logger: logger,
	}
}

// HandleSession runs one player's game from connect to exit.
//
// Postcondition: The session has left its room's occupant set and the client
// is closed, on every exit path.
func (d *Dispatcher) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	client := newTelnetClient(conn)
	sess := session.New(d.rules.StartingArrows)
	return d.Run(ctx, sess, client)
}

// Run drives a session over an arbitrary Client. Split from HandleSession so
// tests can substitute a scripted transport.
//
// Postcondition: Occupant-set cleanup, mailbox closure, and client close all
// happen regardless of how the loop exits.
func (d *Dispatcher) Run(ctx context.Context, sess *session.PlayerSession, client Client) (err error) {
	defer func() {
		if room := sess.Room(); room != nil {
			room.Leave(sess)
		}
		sess.Mailbox().Close()
		_ = client.Close()
		d.logger.Info("session finished",
			zap.String("session", sess.UID()),
			zap.String("state", sess.State().String()),
			zap.Error(err),
		)
	}()

	d.interp.EnterStartRoom(sess)

	// The loop multiplexes two event sources: notifications posted into the
	// session's mailbox (possibly by other sessions' game logic) and player
	// input. Ordering on every wake is fixed: flush pending notifications,
	// then evaluate death, then consume input.
	for {
		var (
			line    string
			gotLine bool
			closed  bool
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sess.Mailbox().Ready():
		case line, gotLine = <-client.Lines():
			closed = !gotLine
		}

		if err := d.flush(sess, client); err != nil {
			return fmt.Errorf("flushing notifications: %w", err)
		}

		if !sess.Alive() {
			if sess.State() == session.StateDead {
				if err := client.SendDeath(); err != nil {
					return fmt.Errorf("sending death signal: %w", err)
				}
			}
			return nil
		}

		if closed {
			return fmt.Errorf("client disconnected")
		}
		if !gotLine {
			continue
		}

		d.interp.Execute(sess, line)

		if err := d.flush(sess, client); err != nil {
			return fmt.Errorf("flushing notifications: %w", err)
		}
		if !sess.Alive() {
			if sess.State() == session.StateDead {
				if err := client.SendDeath(); err != nil {
					return fmt.Errorf("sending death signal: %w", err)
				}
			}
			return nil
		}
	}
}

// flush drains the mailbox and delivers any pending lines as one batch.
func (d *Dispatcher) flush(sess *session.PlayerSession, client Client) error {
	lines := sess.Mailbox().Drain()
	if len(lines) == 0 {
		return nil
	}
	return client.SendLines(lines)
}
