// Package client sends one HTTP/1.1 request per connection and reads the whole response back.
package client

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"rawhttp/application/http"
	"rawhttp/application/http/semantic"
	iolib "rawhttp/lib/io"
	"rawhttp/lib/types/pointer"
	"rawhttp/transport"
	"rawhttp/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Client holds configuration only. It is safe for concurrent use.
type Client struct {
	dialer transport.ConnDialer

	opts Options

	logger *slog.Logger
	clock  clock.Clock

	combineAddr CombineAddrFunc
}

type CombineAddrFunc func(host string, port uint16) transport.Addr

func New(
	d transport.ConnDialer,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	client := &Client{
		dialer: d,
		logger: logger,
		clock:  clock,
		opts:   opts,
	}

	client.combineAddr = func(host string, port uint16) transport.Addr {
		return tcp.Addr{Host: host, Port: port}
	}

	return client
}

func (c *Client) Get(ctx context.Context, host, path string, headers []http.Field) (*Response, error) {
	return c.Send(ctx, semantic.MethodGet, host, path, headers, nil)
}

func (c *Client) Post(ctx context.Context, host, path, body string, headers []http.Field) (*Response, error) {
	return c.Send(ctx, semantic.MethodPost, host, path, headers, pointer.To(body))
}

func (c *Client) Put(ctx context.Context, host, path, body string, headers []http.Field) (*Response, error) {
	return c.Send(ctx, semantic.MethodPut, host, path, headers, pointer.To(body))
}

func (c *Client) Delete(ctx context.Context, host, path string, headers []http.Field) (*Response, error) {
	return c.Send(ctx, semantic.MethodDelete, host, path, headers, nil)
}

// Send performs a single exchange on a fresh connection.
//
// host may carry a port ("example.com:8080"), otherwise Options.Port is used.
// It is sent as the Host header as given.
//
// A response is returned only when its status is a success ([200, 400)).
// Every error is an [*Error]; a KindStatus error carries the response.
func (c *Client) Send(
	ctx context.Context,
	method semantic.Method, host, path string,
	headers []http.Field, body *string,
) (*Response, error) {
	start := c.clock.Now()
	logger := c.logger.With(
		slog.String("method", string(method)),
		slog.String("host", host),
		slog.String("path", path),
	)

	request := buildRequest(method, host, path, headers, body, c.opts.Send.Encode)

	conn, err := c.dial(ctx, host)
	if err != nil {
		return nil, err
	}

	var closeOnce sync.Once
	closeConn := func() {
		closeOnce.Do(func() {
			if err := conn.Close(); err != nil {
				logger.Warn("closing connection", slog.String("error", err.Error()))
			}
		})
	}
	defer closeConn()

	// Cancelling ctx unblocks whatever the conn is doing.
	stop := context.AfterFunc(ctx, closeConn)
	defer stop()

	if err := c.write(conn, request); err != nil {
		return nil, c.fromContext(ctx, err)
	}
	logger.Debug("sent request", slog.Int("bytes", len(request)))

	conn.SetReadDeadLine(c.readDeadline(ctx))

	rr := newResponseReader(&connReader{conn: conn}, c.opts.Receive, logger)
	response, err := rr.read()
	if err == nil && ctx.Err() != nil {
		// Closing on cancel looks like the end of a close-delimited body.
		err = ctx.Err()
	}
	if err != nil {
		return nil, c.fromContext(ctx, err)
	}

	logger.Debug("received response",
		slog.Uint64("status", uint64(response.StatusCode)),
		slog.Int("bytes", len(response.Body)),
		slog.Duration("elapsed", c.clock.Since(start)),
	)

	if err := checkStatus(response, rr.status.ReasonPhrase); err != nil {
		return nil, err
	}

	return response, nil
}

func (c *Client) dial(ctx context.Context, host string) (transport.Conn, error) {
	hostname, port := splitHostPort(host, c.opts.Port)
	addr := c.combineAddr(hostname, port)

	dialCtx := ctx
	if c.opts.Timeout.Dial > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout.Dial)
		defer cancel()
	}

	conn, err := c.dialer.Dial(dialCtx, addr)
	if err != nil {
		err = &connError{op: "dial " + addr.String(), err: err}
		if ctx.Err() != nil {
			return nil, c.fromContext(ctx, err)
		}
		return nil, networkError(err)
	}

	c.logger.Debug("connected", slog.String("addr", addr.String()))

	return conn, nil
}

func (c *Client) write(conn transport.Conn, request []byte) error {
	if c.opts.Timeout.Write > 0 {
		conn.SetWriteDeadLine(c.clock.Now().Add(c.opts.Timeout.Write))
	}

	if _, err := iolib.WriteFull(conn, request); err != nil {
		return networkError(&connError{op: "write request", err: err})
	}

	return nil
}

// readDeadline is the read timeout from now, or the deadline of ctx when it comes first.
// The deadline of ctx is wall clock time, so only the time left until it is carried over to c.clock.
func (c *Client) readDeadline(ctx context.Context) time.Time {
	now := c.clock.Now()

	var deadline time.Time
	if c.opts.Timeout.Read > 0 {
		deadline = now.Add(c.opts.Timeout.Read)
	}

	if d, ok := ctx.Deadline(); ok {
		d = now.Add(time.Until(d))
		if deadline.IsZero() || d.Before(deadline) {
			deadline = d
		}
	}

	return deadline
}

// fromContext reports a cancelled ctx instead of the failure it caused.
func (c *Client) fromContext(ctx context.Context, err error) error {
	ctxErr := ctx.Err()
	if ctxErr == nil {
		return err
	}
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return &Error{Kind: KindNetwork, Message: timeoutMessage, cause: ctxErr}
	}
	return &Error{Kind: KindNetwork, Message: ctxErr.Error(), cause: ctxErr}
}

// splitHostPort takes the port off host when it has one.
// Brackets around an IPv6 address are removed either way.
func splitHostPort(host string, defaultPort uint16) (string, uint16) {
	h, p, err := net.SplitHostPort(host)
	if err != nil {
		if len(host) > 1 && host[0] == '[' && host[len(host)-1] == ']' {
			host = host[1 : len(host)-1]
		}
		return host, defaultPort
	}

	port, err := strconv.ParseUint(p, 10, 16)
	if err != nil {
		return host, defaultPort
	}

	return h, uint16(port)
}

var (
	defaultClient     *Client
	defaultClientOnce sync.Once
)

// Default returns the client used by the package level functions.
// It dials over the operating system's TCP stack with [DefaultOptions].
func Default() *Client {
	defaultClientOnce.Do(func() {
		defaultClient = New(
			tcp.NewDialer(tcp.DefaultDialerOptions),
			slog.Default(),
			clock.New(),
			DefaultOptions,
		)
	})
	return defaultClient
}

func Get(ctx context.Context, host, path string, headers []http.Field) (*Response, error) {
	return Default().Get(ctx, host, path, headers)
}

func Post(ctx context.Context, host, path, body string, headers []http.Field) (*Response, error) {
	return Default().Post(ctx, host, path, body, headers)
}

func Put(ctx context.Context, host, path, body string, headers []http.Field) (*Response, error) {
	return Default().Put(ctx, host, path, body, headers)
}

func Delete(ctx context.Context, host, path string, headers []http.Field) (*Response, error) {
	return Default().Delete(ctx, host, path, headers)
}
