// Package pipe implements an in-memory [transport.Conn] pair and a dialer/listener over it.
package pipe

import (
	"sync"
	"time"

	"rawhttp/transport"

	"github.com/benbjohnson/clock"
)

type Addr struct {
	Name string
}

func (a Addr) Network() transport.Protocol { return transport.Pipe }
func (a Addr) String() string              { return a.Name }

var _ transport.Addr = Addr{}

// half is one direction of a pipe pair: a bounded buffer one end writes and the other reads.
type half struct {
	mu   sync.Mutex
	cond *sync.Cond // broadcast on any change of buf or closed

	buf    []byte
	size   int
	closed bool // set when either end closes

	writeMu sync.Mutex // keeps concurrent writes from interleaving
}

func newHalf(size uint) *half {
	h := &half{buf: make([]byte, 0, size), size: int(size)}
	h.cond = sync.NewCond(&h.mu)
	return h
}

func (h *half) wake() {
	h.mu.Lock()
	h.cond.Broadcast()
	h.mu.Unlock()
}

func (h *half) close() {
	h.mu.Lock()
	h.closed = true
	h.cond.Broadcast()
	h.mu.Unlock()
}

type pipe struct {
	local, remote Addr

	rx, tx *half

	readDeadline, writeDeadline *deadline
}

var _ transport.Conn = (*pipe)(nil)

// Pipe creates a pair of connected pipes. Each direction buffers up to bufSize bytes,
// a Write returns once all of its bytes are buffered.
// bufSize MUST be more than 0.
func Pipe(name1, name2 string, clock clock.Clock, bufSize uint) (c1, c2 *pipe) {
	if bufSize == 0 {
		panic("buffer size cannot be 0")
	}

	a, b := newHalf(bufSize), newHalf(bufSize)
	c1 = &pipe{
		local: Addr{name1}, remote: Addr{name2},
		rx: a, tx: b,
		readDeadline: &deadline{clock: clock}, writeDeadline: &deadline{clock: clock},
	}
	c2 = &pipe{
		local: Addr{name2}, remote: Addr{name1},
		rx: b, tx: a,
		readDeadline: &deadline{clock: clock}, writeDeadline: &deadline{clock: clock},
	}
	return c1, c2
}

func (p *pipe) ReadBufSize() uint          { return uint(p.rx.size) }
func (p *pipe) WriteBufSize() uint         { return uint(p.tx.size) }
func (p *pipe) LocalAddr() transport.Addr  { return p.local }
func (p *pipe) RemoteAddr() transport.Addr { return p.remote }

// Close closes both directions. Bytes already buffered stay readable by the peer.
func (p *pipe) Close() error {
	p.rx.close()
	p.tx.close()
	return nil
}

func (p *pipe) Read(b []byte) (int, error) {
	h := p.rx
	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		if p.readDeadline.passed() {
			return 0, transport.ErrDeadLineExceeded
		}

		if len(h.buf) > 0 {
			n := copy(b, h.buf)
			h.buf = h.buf[:copy(h.buf, h.buf[n:])]
			h.cond.Broadcast() // Room for a waiting writer.
			return n, nil
		}

		if h.closed {
			return 0, transport.ErrConnClosed
		}

		h.cond.Wait()
	}
}

func (p *pipe) Write(b []byte) (int, error) {
	h := p.tx
	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	written := 0
	for {
		if p.writeDeadline.passed() {
			return written, transport.ErrDeadLineExceeded
		}

		if h.closed {
			return written, transport.ErrConnClosed
		}

		if len(b) == 0 {
			return written, nil
		}

		if room := h.size - len(h.buf); room > 0 {
			n := min(room, len(b))
			h.buf = append(h.buf, b[:n]...)
			b = b[n:]
			written += n
			h.cond.Broadcast()
			continue
		}

		h.cond.Wait()
	}
}

func (p *pipe) SetReadDeadLine(t time.Time)  { p.readDeadline.set(t, p.rx.wake) }
func (p *pipe) SetWriteDeadLine(t time.Time) { p.writeDeadline.set(t, p.tx.wake) }

// deadline wakes the waiters of a half when it passes, so they can check it.
type deadline struct {
	clock clock.Clock

	mu    sync.Mutex
	at    time.Time
	timer *clock.Timer
}

func (d *deadline) set(at time.Time, wake func()) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.at = at
	if !at.IsZero() {
		d.timer = d.clock.AfterFunc(d.clock.Until(at), wake)
	}
	d.mu.Unlock()

	// Waiters hold the half's lock while checking passed, so wake without d.mu.
	wake()
}

func (d *deadline) passed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return !d.at.IsZero() && d.clock.Until(d.at) <= 0
}
