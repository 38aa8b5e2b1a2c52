//go:build unix

package tcp

import (
	"rawhttp/transport"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var errnos = []struct {
	errno unix.Errno
	err   error
}{
	{unix.ECONNREFUSED, transport.ErrConnRefused},
	{unix.ECONNRESET, transport.ErrConnReset},
	{unix.ECONNABORTED, transport.ErrConnReset},
	{unix.EPIPE, transport.ErrBrokenPipe},
	{unix.ENETUNREACH, transport.ErrNetUnreachable},
	{unix.EHOSTUNREACH, transport.ErrNetUnreachable},
	{unix.ETIMEDOUT, transport.ErrDeadLineExceeded},
}

func mapErrno(err error) error {
	for _, e := range errnos {
		if errors.Is(err, e.errno) {
			return e.err
		}
	}
	return nil
}
