package client

import (
	"context"
	"fmt"

	"rawhttp/transport"

	"github.com/pkg/errors"
)

type ErrorKind uint8

const (
	// KindNetwork is a failure of the transport: dial, write, read or a deadline.
	KindNetwork ErrorKind = iota + 1
	// KindInvalidResponse is a byte stream that is not a well-formed HTTP response.
	KindInvalidResponse
	// KindStatus is a well-formed response whose status is not a success.
	KindStatus
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindInvalidResponse:
		return "invalid response"
	case KindStatus:
		return "status"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is the only error type returned by requests.
type Error struct {
	Kind    ErrorKind
	Code    uint16 // KindStatus only.
	Message string

	// Response is the full response of a KindStatus error.
	Response *Response

	cause error
}

// Sentinels matching any [*Error] of the same kind with [errors.Is].
var (
	ErrNetwork         = &Error{Kind: KindNetwork}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrStatus          = &Error{Kind: KindStatus}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindNetwork:
		return "network error: " + e.Message
	case KindInvalidResponse:
		return "invalid response: " + e.Message
	case KindStatus:
		return fmt.Sprintf("http %d error: %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Code == 0 && t.Message == "" && t.Response == nil
}

func (e *Error) Unwrap() error { return e.cause }

// Cause returns the error that led to e, if any.
func (e *Error) Cause() error { return e.cause }

const timeoutMessage = "timeout"

func networkError(err error) *Error {
	msg := err.Error()
	if errors.Is(err, transport.ErrDeadLineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		msg = timeoutMessage
	}
	return &Error{Kind: KindNetwork, Message: msg, cause: err}
}

func invalidResponse(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidResponse, Message: fmt.Sprintf(format, args...), cause: err}
}

// connError marks a failure of the connection itself,
// telling it apart from framing problems found in the bytes read.
type connError struct {
	op  string
	err error
}

func (e *connError) Error() string { return e.op + ": " + e.err.Error() }
func (e *connError) Unwrap() error { return e.err }

func asConnError(err error) (*connError, bool) {
	var ce *connError
	ok := errors.As(err, &ce)
	return ce, ok
}
