// Package test checks the behavior every [transport.Conn] implementation shares.
package test

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"rawhttp/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// NewPair returns two conns connected to each other.
// Deadlines are measured on the wall clock.
type NewPair func(t *testing.T) (c1, c2 transport.Conn)

// RunConnTests runs every conformance test on a fresh pair.
// Both conns are closed after each test.
func RunConnTests(t *testing.T, newPair NewPair) {
	tests := []struct {
		name string
		fn   func(t *testing.T, c1, c2 transport.Conn)
	}{
		{"ReadWrite", testReadWrite},
		{"ConcurrentWrites", testConcurrentWrites},
		{"ReadAfterPeerClose", testReadAfterPeerClose},
		{"UseAfterClose", testUseAfterClose},
		{"CloseWakesRead", testCloseWakesRead},
		{"PastDeadline", testPastDeadline},
		{"DeadlineWakesRead", testDeadlineWakesRead},
		{"Addr", testAddr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			c1, c2 := newPair(t)
			defer c2.Close()
			defer c1.Close()

			tt.fn(t, c1, c2)
		})
	}
}

// waitFor fails t when nothing arrives on ch within a second.
func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		require.FailNow(t, "timed out")
	}
	panic("unreachable")
}

func testReadWrite(t *testing.T, c1, c2 transport.Conn) {
	data := []byte("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n")

	n, err := c1.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Reads may come back in pieces.
	got := make([]byte, len(data))
	_, err = io.ReadFull(c2, got)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	n, err = c2.Write([]byte("pong"))
	require.NoError(t, err)
	require.Equal(t, 4, n)

	got = make([]byte, 4)
	_, err = io.ReadFull(c1, got)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(got))
}

func testConcurrentWrites(t *testing.T, c1, c2 transport.Conn) {
	const writers = 10
	data := []byte("ABCD")

	var wg sync.WaitGroup
	wg.Add(writers)
	for range writers {
		go func() {
			defer wg.Done()
			n, err := c1.Write(data)
			assert.NoError(t, err)
			assert.Equal(t, len(data), n)
		}()
	}

	received := make(chan []byte, 1)
	go func() {
		var all []byte
		b := make([]byte, 7)
		for {
			n, err := c2.Read(b)
			all = append(all, b[:n]...)
			if err != nil {
				assert.ErrorIs(t, err, transport.ErrConnClosed)
				received <- all
				return
			}
		}
	}()

	wg.Wait()
	require.NoError(t, c1.Close())

	assert.Equal(t, bytes.Repeat(data, writers), waitFor(t, received))
}

func testReadAfterPeerClose(t *testing.T, c1, c2 transport.Conn) {
	data := []byte("HTTP/1.1 200 OK\r\n\r\n")

	_, err := c2.Write(data)
	require.NoError(t, err)
	require.NoError(t, c2.Close())

	// What was sent before close is still readable.
	got := make([]byte, len(data))
	_, err = io.ReadFull(c1, got)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	n, err := c1.Read(make([]byte, 1))
	assert.ErrorIs(t, err, transport.ErrConnClosed)
	assert.Zero(t, n)
}

func testUseAfterClose(t *testing.T, c1, _ transport.Conn) {
	require.NoError(t, c1.Close())

	n, err := c1.Read(make([]byte, 4))
	assert.ErrorIs(t, err, transport.ErrConnClosed)
	assert.Zero(t, n)

	n, err = c1.Write([]byte("late"))
	assert.ErrorIs(t, err, transport.ErrConnClosed)
	assert.Zero(t, n)
}

func testCloseWakesRead(t *testing.T, c1, _ transport.Conn) {
	result := make(chan error, 1)
	go func() {
		_, err := c1.Read(make([]byte, 1))
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c1.Close())

	assert.ErrorIs(t, waitFor(t, result), transport.ErrConnClosed)
}

func testPastDeadline(t *testing.T, c1, _ transport.Conn) {
	c1.SetReadDeadLine(time.Now().Add(-time.Second))
	n, err := c1.Read(make([]byte, 1))
	assert.ErrorIs(t, err, transport.ErrDeadLineExceeded)
	assert.Zero(t, n)

	c1.SetWriteDeadLine(time.Now().Add(-time.Second))
	n, err = c1.Write([]byte("x"))
	assert.ErrorIs(t, err, transport.ErrDeadLineExceeded)
	assert.Zero(t, n)
}

func testDeadlineWakesRead(t *testing.T, c1, _ transport.Conn) {
	result := make(chan error, 1)
	go func() {
		_, err := c1.Read(make([]byte, 1))
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)
	c1.SetReadDeadLine(time.Now().Add(20 * time.Millisecond))

	assert.ErrorIs(t, waitFor(t, result), transport.ErrDeadLineExceeded)
}

func testAddr(t *testing.T, c1, c2 transport.Conn) {
	assert.Equal(t, c1.LocalAddr(), c2.RemoteAddr())
	assert.Equal(t, c2.LocalAddr(), c1.RemoteAddr())
	assert.Equal(t, c1.LocalAddr().Network(), c2.LocalAddr().Network())
}
