package telnet

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeConn builds a Conn over an in-memory pipe. Timeouts are zero so no
// deadlines are armed.
func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return NewConn(server, 0, 0), client
}

func writeAsync(t *testing.T, w net.Conn, data []byte) {
	t.Helper()
	go func() {
		_, _ = w.Write(data)
	}()
}

func TestReadLineStripsLineEndings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf", "move 5\r\n", "move 5"},
		{"bare lf", "move 5\n", "move 5"},
		{"bare cr then more", "move 5\rpickup\n", "move 5"},
		{"empty line", "\r\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, client := pipeConn(t)
			writeAsync(t, client, []byte(tt.input))

			line, err := conn.ReadLine()
			require.NoError(t, err)
			assert.Equal(t, tt.want, line)
		})
	}
}

func TestReadLineFiltersIACSequences(t *testing.T) {
	conn, client := pipeConn(t)

	// A DO option negotiation spliced into the middle of the line.
	input := []byte("mo")
	input = append(input, IAC, DO, OptSuppressGoAhead)
	input = append(input, []byte("ve 5\r\n")...)
	writeAsync(t, client, input)

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "move 5", line)
}

func TestReadLineFiltersSubnegotiation(t *testing.T) {
	conn, client := pipeConn(t)

	input := []byte{IAC, SB, 31, 0, 80, 0, 24, IAC, SE}
	input = append(input, []byte("climb\r\n")...)
	writeAsync(t, client, input)

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "climb", line)
}

func TestReadLineFiltersControlCharacters(t *testing.T) {
	conn, client := pipeConn(t)
	writeAsync(t, client, []byte("qu\x08it\tnow\r\n"))

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "quit\tnow", line)
}

func TestWriteLineAppendsCRLF(t *testing.T) {
	conn, client := pipeConn(t)

	go func() {
		_ = conn.WriteLine("You are in room: 3")
	}()

	reader := bufio.NewReader(client)
	got, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "You are in room: 3\r\n", got)
}

func TestWriteLinesBatchesInOrder(t *testing.T) {
	conn, client := pipeConn(t)

	lines := []string{"first", "second", "third"}
	go func() {
		_ = conn.WriteLines(lines)
	}()

	reader := bufio.NewReader(client)
	for _, want := range lines {
		got, err := reader.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, want+"\r\n", got)
	}
}

func TestNegotiateSendsSuppressGoAhead(t *testing.T) {
	conn, client := pipeConn(t)

	go func() {
		_ = conn.Negotiate()
	}()

	buf := make([]byte, 3)
	_, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{IAC, WILL, OptSuppressGoAhead}, buf)
}

func TestReadLineReturnsErrorOnClose(t *testing.T) {
	conn, client := pipeConn(t)
	require.NoError(t, client.Close())

	_, err := conn.ReadLine()
	assert.Error(t, err)
}
