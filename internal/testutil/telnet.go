package testutil

import (
	"bytes"
	"errors"
	"net"
	"os"
	"testing"
	"time"
)

// commandTimeout bounds how long Command waits for the next prompt.
const commandTimeout = 5 * time.Second

// ConsoleClient drives a console session over TCP. Output received past the
// text a read waited for is kept for the next read, so prompts are never
// consumed twice or lost.
type ConsoleClient struct {
	t       *testing.T
	conn    net.Conn
	pending []byte
}

// NewConsoleClient dials addr. The connection is closed when the test ends.
func NewConsoleClient(t *testing.T, addr string) *ConsoleClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, commandTimeout)
	if err != nil {
		t.Fatalf("dialing console at %s: %v", addr, err)
	}
	c := &ConsoleClient{t: t, conn: conn}
	t.Cleanup(c.Close)
	return c
}

// ReadUntil returns the output up to and including the first occurrence of
// marker, failing the test if it does not arrive within timeout.
func (c *ConsoleClient) ReadUntil(marker string, timeout time.Duration) string {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	_ = c.conn.SetReadDeadline(deadline)
	chunk := make([]byte, 512)
	for {
		if i := bytes.Index(c.pending, []byte(marker)); i >= 0 {
			end := i + len(marker)
			out := string(c.pending[:end])
			c.pending = append(c.pending[:0], c.pending[end:]...)
			return out
		}
		n, err := c.conn.Read(chunk)
		c.pending = append(c.pending, chunk[:n]...)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				c.t.Fatalf("no %q within %s; received %q", marker, timeout, c.pending)
			}
			c.t.Fatalf("reading console: %v; received %q", err, c.pending)
		}
	}
}

// Send writes one line terminated the way a Telnet client does.
func (c *ConsoleClient) Send(line string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(commandTimeout))
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		c.t.Fatalf("sending %q: %v", line, err)
	}
}

// Command sends line and returns everything printed up to the next prompt.
func (c *ConsoleClient) Command(line, prompt string) string {
	c.t.Helper()
	c.Send(line)
	return c.ReadUntil(prompt, commandTimeout)
}

// Close hangs up. Calling it more than once is harmless.
func (c *ConsoleClient) Close() {
	_ = c.conn.Close()
}
