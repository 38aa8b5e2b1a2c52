package pipe

import (
	"context"
	"strconv"
	"sync"

	"rawhttp/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

const (
	// DefaultBufSize is the per direction buffer of pipes made by [PipeTransport].
	DefaultBufSize = 64 * 1024

	// Backlog is how many dialed conns a [Listener] holds before refusing new ones.
	Backlog = 16
)

// PipeTransport connects dialers and listeners in memory by [Addr].
// Dial succeeds as soon as the conn is queued on the listener,
// the way a TCP connect completes before accept.
type PipeTransport struct {
	clock   clock.Clock
	bufSize uint

	mu        sync.Mutex
	listeners map[Addr]*Listener
	dialed    uint
}

var _ transport.ConnDialer = (*PipeTransport)(nil)

// NewPipeTransport makes pipes with bufSize bytes per direction, [DefaultBufSize] when it is 0.
func NewPipeTransport(clock clock.Clock, bufSize uint) *PipeTransport {
	if bufSize == 0 {
		bufSize = DefaultBufSize
	}
	return &PipeTransport{
		clock:     clock,
		bufSize:   bufSize,
		listeners: make(map[Addr]*Listener),
	}
}

// Dial returns [transport.ErrConnRefused] when nobody listens on addr or its backlog is full.
func (pt *PipeTransport) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	to, ok := addr.(Addr)
	if !ok {
		return nil, errors.Errorf("unsupported address type %T", addr)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pt.mu.Lock()
	defer pt.mu.Unlock()

	l, ok := pt.listeners[to]
	if !ok {
		return nil, transport.ErrConnRefused
	}

	pt.dialed++
	local, remote := Pipe("dialer-"+strconv.FormatUint(uint64(pt.dialed), 10), to.Name, pt.clock, pt.bufSize)

	select {
	case l.backlog <- remote:
		return local, nil
	default:
		return nil, transport.ErrConnRefused
	}
}

func (pt *PipeTransport) Listen(addr Addr) (*Listener, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if _, ok := pt.listeners[addr]; ok {
		return nil, transport.ErrAddrAlreadyInUse
	}

	l := &Listener{
		addr:      addr,
		transport: pt,
		backlog:   make(chan *pipe, Backlog),
		closed:    make(chan struct{}),
	}
	pt.listeners[addr] = l

	return l, nil
}

// Listener hands out conns dialed to its address.
type Listener struct {
	addr      Addr
	transport *PipeTransport

	backlog chan *pipe
	closed  chan struct{}
}

var _ transport.ConnListener = (*Listener)(nil)

func (l *Listener) Addr() Addr { return l.addr }

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closed:
		return nil, transport.ErrConnListenerClosed
	case conn := <-l.backlog:
		return conn, nil
	}
}

// Close stops listening. Conns still in the backlog are closed,
// which their dialers see as the peer closing.
func (l *Listener) Close() error {
	pt := l.transport
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.listeners[l.addr] != l {
		return transport.ErrConnListenerClosed
	}
	delete(pt.listeners, l.addr)
	close(l.closed)

	// Dial holds pt.mu while queueing, so nothing is added from now on.
	for {
		select {
		case conn := <-l.backlog:
			conn.Close()
		default:
			return nil
		}
	}
}
