// Package tcp connects to remote hosts over the operating system's TCP stack.
package tcp

import (
	"context"
	"io"
	"net"
	"net/netip"
	"os"
	"strconv"
	"time"

	"rawhttp/application/util/domain"
	"rawhttp/transport"

	"github.com/pkg/errors"
)

type Addr struct {
	Host string
	Port uint16
}

var _ transport.Addr = Addr{}

func (a Addr) Network() transport.Protocol { return transport.TCP }

func (a Addr) String() string {
	return net.JoinHostPort(a.Host, strconv.FormatUint(uint64(a.Port), 10))
}

func addrFrom(na net.Addr) Addr {
	if ta, ok := na.(*net.TCPAddr); ok {
		return Addr{Host: ta.IP.String(), Port: uint16(ta.Port)}
	}
	return Addr{Host: na.String()}
}

type DialerOptions struct {
	// Lookuper overrides name resolution for the hosts it knows.
	// Other hosts are resolved by the operating system.
	Lookuper domain.Lookuper

	// KeepAlive is handed to [net.Dialer]. Negative disables it.
	KeepAlive time.Duration
}

var DefaultDialerOptions = DialerOptions{
	Lookuper:  nil,
	KeepAlive: -1,
}

type Dialer struct {
	dialer   net.Dialer
	lookuper domain.Lookuper
}

var _ transport.ConnDialer = (*Dialer)(nil)

func NewDialer(opts DialerOptions) *Dialer {
	return &Dialer{
		dialer:   net.Dialer{KeepAlive: opts.KeepAlive},
		lookuper: opts.Lookuper,
	}
}

// Dial connects to addr, which must be an [Addr].
// ctx bounds the whole dial including name resolution.
func (d *Dialer) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	ta, ok := addr.(Addr)
	if !ok {
		return nil, errors.Errorf("unsupported address type %T", addr)
	}

	targets := []string{ta.String()}
	if ips := d.lookup(ctx, ta.Host); len(ips) > 0 {
		targets = targets[:0]
		for _, ip := range ips {
			targets = append(targets, netip.AddrPortFrom(ip, ta.Port).String())
		}
	}

	var lastErr error
	for _, target := range targets {
		nc, err := d.dialer.DialContext(ctx, string(transport.TCP), target)
		if err == nil {
			return &conn{Conn: nc}, nil
		}

		lastErr = mapError(err)
		if ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

func (d *Dialer) lookup(ctx context.Context, host string) []netip.Addr {
	if d.lookuper == nil {
		return nil
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return nil
	}

	ips, err := d.lookuper.LookupIP(ctx, host)
	if err != nil {
		return nil
	}
	return ips
}

// conn adapts [net.Conn] to [transport.Conn].
type conn struct{ net.Conn }

var _ transport.Conn = (*conn)(nil)

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if err != nil {
		return n, mapError(err)
	}
	return n, nil
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if err != nil {
		return n, mapError(err)
	}
	return n, nil
}

func (c *conn) LocalAddr() transport.Addr  { return addrFrom(c.Conn.LocalAddr()) }
func (c *conn) RemoteAddr() transport.Addr { return addrFrom(c.Conn.RemoteAddr()) }

// Errors are ignored as they only happen on closed conns, where reads and writes fail anyway.
func (c *conn) SetReadDeadLine(t time.Time)  { _ = c.Conn.SetReadDeadline(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { _ = c.Conn.SetWriteDeadline(t) }

// mapError translates errors of the net package into transport errors.
// Errors without a counterpart are returned as is.
func mapError(err error) error {
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		return transport.ErrConnClosed
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return transport.ErrDeadLineExceeded
	case errors.As(err, &dnsErr) && dnsErr.IsNotFound:
		return errors.Wrapf(transport.ErrHostNotFound, "lookup %s", dnsErr.Name)
	}

	if mapped := mapErrno(err); mapped != nil {
		return mapped
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return transport.ErrDeadLineExceeded
	}

	return err
}
