// Package transport defines the byte stream connections the HTTP client runs on.
//
// Implementations translate their own failures into the errors below,
// so callers can tell a closed stream from a timeout or a refused dial.
package transport

import (
	"context"
	"errors"
	"time"
)

type Protocol string

const (
	TCP  Protocol = "tcp"
	Pipe Protocol = "pipe"
)

type Addr interface {
	Network() Protocol
	String() string
}

// Stream state.
var (
	ErrConnClosed         = errors.New("connection is closed")
	ErrConnListenerClosed = errors.New("conn listener is closed")
	ErrDeadLineExceeded   = errors.New("deadline exceeded")
)

// Failures reported by the network.
var (
	ErrConnRefused      = errors.New("connection refused")
	ErrConnReset        = errors.New("connection reset by peer")
	ErrBrokenPipe       = errors.New("broken pipe")
	ErrNetUnreachable   = errors.New("network is unreachable")
	ErrHostNotFound     = errors.New("no such host")
	ErrAddrAlreadyInUse = errors.New("address already in use")
)

// Conn is a bidirectional byte stream. It is safe for concurrent use.
//
// Read returns [ErrConnClosed] once either side closed the stream
// and everything sent before that has been consumed.
// Once a deadline passes, Read or Write returns [ErrDeadLineExceeded],
// including calls that were already waiting.
type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	LocalAddr() Addr
	RemoteAddr() Addr

	// Zero time clears the deadline.
	SetReadDeadLine(t time.Time)
	SetWriteDeadLine(t time.Time)
}

type ConnDialer interface {
	Dial(ctx context.Context, addr Addr) (Conn, error)
}

type ConnListener interface {
	Accept(ctx context.Context) (Conn, error)
	Close() error
}
