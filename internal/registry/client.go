// Package registry provides the client for the cave-directory service. A cave
// server announces its player-facing listen address to the directory once at
// startup so clients can discover it; a failed registration is fatal.
package registry

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/caveserver/internal/config"
)

// Wire protocol: one request line, one response line.
const (
	registerVerb = "REGISTER"
	okResponse   = "OK"
)

// Client is a connection to the cave-directory service.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	logger *zap.Logger
}

// Dial connects to the directory service.
//
// Precondition: cfg.Enabled must be true; logger must be non-nil.
// Postcondition: Returns a connected Client or a non-nil error.
func Dial(cfg config.RegistryConfig, logger *zap.Logger) (*Client, error) {
	conn, err := net.DialTimeout("tcp", cfg.Addr(), cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dialing registry %s: %w", cfg.Addr(), err)
	}
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
		logger: logger,
	}, nil
}

// Register announces the cave server's player-facing address and waits for
// acknowledgement.
//
// Precondition: addr must be a non-empty "host:port" string.
// Postcondition: Returns nil only if the directory acknowledged with OK.
func (c *Client) Register(addr string) error {
	if addr == "" {
		return fmt.Errorf("registry: advertised address must not be empty")
	}

	start := time.Now()
	if _, err := fmt.Fprintf(c.conn, "%s %s\r\n", registerVerb, addr); err != nil {
		return fmt.Errorf("sending registration: %w", err)
	}

	resp, err := c.reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading registration response: %w", err)
	}
	resp = strings.TrimSpace(resp)
	if resp != okResponse {
		return fmt.Errorf("registry rejected registration: %q", resp)
	}

	c.logger.Info("registered with cave directory",
		zap.String("advertised_addr", addr),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Close closes the directory connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
