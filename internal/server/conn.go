package server

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"sync"
	"time"
)

// maxLineBytes bounds a single wire frame. A client that exceeds it gets
// ErrFrameTooLong and its connection torn down.
const maxLineBytes = 4096

// ErrFrameTooLong is returned when a frame exceeds maxLineBytes without a
// newline.
var ErrFrameTooLong = errors.New("server: frame exceeds maximum length")

// Conn wraps a TCP connection with newline-framed message handling. Reads
// are owned by the connection's worker goroutine; writes are serialized by a
// mutex so broadcasts from other workers interleave safely.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, maxLineBytes),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ReadFrame reads one newline-terminated frame. The returned bytes exclude
// the trailing \n (and \r, for clients that send \r\n). A line longer than
// maxLineBytes fails with ErrFrameTooLong.
//
// Postcondition: Returns the next frame, or an error (including io.EOF).
func (c *Conn) ReadFrame() ([]byte, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	slice, err := c.reader.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return nil, ErrFrameTooLong
		}
		return nil, err
	}
	// ReadSlice's result is only valid until the next read.
	line := make([]byte, len(slice))
	copy(line, slice)
	return bytes.TrimRight(line, "\r\n"), nil
}

// WriteFrame sends one pre-encoded frame to the client. The data must
// already carry its trailing newline.
//
// Postcondition: The data is written to the connection.
func (c *Conn) WriteFrame(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Close closes the underlying TCP connection.
//
// Postcondition: The connection is closed and no longer usable.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
