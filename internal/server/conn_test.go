package server

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFrameTrimsDelimiters(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	c := NewConn(srv, time.Second, time.Second)
	defer c.Close()

	go func() {
		_, _ = client.Write([]byte("{\"op\":\"PING\"}\r\n"))
	}()

	line, err := c.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, `{"op":"PING"}`, string(line))
}

func TestReadFrameRejectsOversizedLine(t *testing.T) {
	client, srv := net.Pipe()
	c := NewConn(srv, time.Second, time.Second)
	defer c.Close()

	// An unterminated line longer than the frame bound must error rather
	// than accumulate without limit.
	go func() {
		_, _ = client.Write(bytes.Repeat([]byte("a"), maxLineBytes+1))
	}()

	_, err := c.ReadFrame()
	assert.ErrorIs(t, err, ErrFrameTooLong)
}
