package session

import (
	"sync"
)

// Mailbox is an ordered queue of pending notification lines for one session.
// Game logic running on any goroutine appends with Post; only the session's
// own loop drains and flushes to the transport. Ready lets that loop block on
// "notification pending" alongside its other event sources in a select.
type Mailbox struct {
	mu     sync.Mutex
	lines  []string
	closed bool
	ready  chan struct{}
}

// NewMailbox creates an empty, open mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		ready: make(chan struct{}, 1),
	}
}

// Post appends lines to the queue and signals readiness. Posts to a closed
// mailbox are dropped: the recipient is already gone.
//
// Postcondition: Lines from a single Post are delivered contiguously and in order.
func (m *Mailbox) Post(lines ...string) {
	if len(lines) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.lines = append(m.lines, lines...)
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Drain removes and returns all pending lines in posting order.
//
// Postcondition: The mailbox is empty. Returns nil when nothing is pending.
func (m *Mailbox) Drain() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := m.lines
	m.lines = nil
	return lines
}

// Ready returns a channel that receives whenever lines may be pending. A
// receive is a hint, not a guarantee; the loop must still call Drain and
// tolerate an empty result.
func (m *Mailbox) Ready() <-chan struct{} {
	return m.ready
}

// Close marks the mailbox closed. Pending lines stay drainable; further
// posts are dropped.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
