// Package testutil provides test helpers for exercising the server over a
// real TCP connection.
package testutil

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"
)

// LineClient is a newline-framed JSON test client for integration testing.
type LineClient struct {
	conn   net.Conn
	reader *bufio.Reader
	t      *testing.T
}

// NewLineClient dials the given address and returns a test client.
//
// Precondition: addr must be a valid "host:port" string with a listening server.
// Postcondition: Returns a connected LineClient or fails the test.
func NewLineClient(t *testing.T, addr string) *LineClient {
	t.Helper()
	start := time.Now()

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", addr, err, time.Since(start))
	}

	t.Cleanup(func() {
		conn.Close()
	})

	client := &LineClient{
		conn:   conn,
		reader: bufio.NewReader(conn),
		t:      t,
	}

	t.Logf("line client connected to %s [%s]", addr, time.Since(start))
	return client
}

// Send marshals the given message, appends the frame delimiter, and writes it.
//
// Postcondition: One complete frame is written to the connection.
func (c *LineClient) Send(msg map[string]any) {
	c.t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("marshalling %v: %v", msg, err)
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		c.t.Fatalf("sending %v: %v", msg, err)
	}
}

// SendRaw writes a raw line followed by the frame delimiter, for exercising
// protocol error paths.
func (c *LineClient) SendRaw(line string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		c.t.Fatalf("sending raw %q: %v", line, err)
	}
}

// Recv reads the next frame and decodes it into a generic map.
//
// Postcondition: Returns the decoded message, or fails on timeout.
func (c *LineClient) Recv() map[string]any {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		c.t.Fatalf("reading frame: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(line, &msg); err != nil {
		c.t.Fatalf("decoding frame %q: %v", line, err)
	}
	return msg
}

// RecvOp reads frames until one with the given op arrives, failing the test
// if a different-op frame count exceeds a small tolerance.
//
// Precondition: op must be non-empty.
func (c *LineClient) RecvOp(op string) map[string]any {
	c.t.Helper()
	for i := 0; i < 16; i++ {
		msg := c.Recv()
		if msg["op"] == op {
			return msg
		}
	}
	c.t.Fatalf("no %s frame within 16 messages", op)
	return nil
}

// Close closes the client connection immediately, simulating a drop.
func (c *LineClient) Close() {
	_ = c.conn.Close()
}
