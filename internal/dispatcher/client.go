package dispatcher

import (
	"github.com/cory-johannsen/caveserver/internal/telnet"
)

// DiedSignal is the distinct terminal line sent exactly once before a
// death-triggered disconnect.
const DiedSignal = "DIED"

// Client is the transport-facing contract a session loop drives: an input
// line stream plus ordered batch delivery. Implementations other than the
// Telnet adapter exist only in tests.
type Client interface {
	// Lines returns the inbound line stream. The channel is closed when the
	// client disconnects or the transport fails.
	Lines() <-chan string
	// SendLines delivers an ordered batch of text lines.
	SendLines(lines []string) error
	// SendDeath delivers the terminal death signal.
	SendDeath() error
	// Close tears down the transport. Safe to call more than once.
	Close() error
}

// telnetClient adapts a telnet.Conn to the Client contract. A dedicated
// reader goroutine pumps lines into a channel so the session loop can select
// over input and mailbox readiness at once.
type telnetClient struct {
	conn  *telnet.Conn
	lines chan string
	done  chan struct{}
}

// newTelnetClient wraps conn and starts its reader goroutine.
func newTelnetClient(conn *telnet.Conn) *telnetClient {
	c := &telnetClient{
		conn:  conn,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// readLoop pumps inbound lines until the connection fails or the client is
// closed. Closing c.lines is the disconnect signal the session loop sees.
func (c *telnetClient) readLoop() {
	defer close(c.lines)
	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			return
		}
		select {
		case c.lines <- line:
		case <-c.done:
			return
		}
	}
}

func (c *telnetClient) Lines() <-chan string {
	return c.lines
}

func (c *telnetClient) SendLines(lines []string) error {
	return c.conn.WriteLines(lines)
}

func (c *telnetClient) SendDeath() error {
	return c.conn.WriteLine(DiedSignal)
}

func (c *telnetClient) Close() error {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	return c.conn.Close()
}
