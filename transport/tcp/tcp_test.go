package tcp

import (
	"context"
	"io"
	"net"
	"net/netip"
	"os"
	"testing"
	"time"

	"rawhttp/application/util/domain"
	"rawhttp/transport"
	"rawhttp/transport/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

func TestAddrString(t *testing.T) {
	assert.Equal(t, "example.com:80", Addr{Host: "example.com", Port: 80}.String())
	assert.Equal(t, "[::1]:8080", Addr{Host: "::1", Port: 8080}.String())
	assert.Equal(t, transport.TCP, Addr{}.Network())
}

type DialerTestSuite struct {
	suite.Suite

	lis  net.Listener
	port uint16
}

func TestDialerTestSuite(t *testing.T) {
	suite.Run(t, new(DialerTestSuite))
}

func (s *DialerTestSuite) SetupTest() {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)

	s.lis = lis
	s.port = uint16(lis.Addr().(*net.TCPAddr).Port)
}

func (s *DialerTestSuite) TearDownTest() {
	s.lis.Close()
	goleak.VerifyNone(s.T())
}

// serve accepts one conn and hands it to fn.
func (s *DialerTestSuite) serve(fn func(net.Conn)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c, err := s.lis.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		fn(c)
	}()
	return done
}

func (s *DialerTestSuite) TestDialAndExchange() {
	done := s.serve(func(c net.Conn) {
		b := make([]byte, 4)
		_, err := io.ReadFull(c, b)
		s.NoError(err)
		_, err = c.Write([]byte("pong"))
		s.NoError(err)
	})

	d := NewDialer(DefaultDialerOptions)
	conn, err := d.Dial(context.Background(), Addr{Host: "127.0.0.1", Port: s.port})
	s.Require().NoError(err)
	defer conn.Close()

	s.Equal(Addr{Host: "127.0.0.1", Port: s.port}, conn.RemoteAddr())
	s.Equal(transport.TCP, conn.LocalAddr().Network())

	_, err = conn.Write([]byte("ping"))
	s.Require().NoError(err)

	b := make([]byte, 4)
	_, err = io.ReadFull(conn, b)
	s.Require().NoError(err)
	s.Equal("pong", string(b))

	<-done

	// Peer is gone.
	_, err = conn.Read(b)
	s.ErrorIs(err, transport.ErrConnClosed)
}

func (s *DialerTestSuite) TestReadDeadLine() {
	release := make(chan struct{})
	done := s.serve(func(c net.Conn) { <-release })
	defer func() { close(release); <-done }()

	d := NewDialer(DefaultDialerOptions)
	conn, err := d.Dial(context.Background(), Addr{Host: "127.0.0.1", Port: s.port})
	s.Require().NoError(err)
	defer conn.Close()

	conn.SetReadDeadLine(time.Now().Add(20 * time.Millisecond))

	_, err = conn.Read(make([]byte, 1))
	s.ErrorIs(err, transport.ErrDeadLineExceeded)
}

func (s *DialerTestSuite) TestDialWithLookuper() {
	done := s.serve(func(c net.Conn) {})

	lookuper := domain.NewMapLookuper(map[string][]netip.Addr{
		"service.test": {netip.MustParseAddr("127.0.0.1")},
	})
	d := NewDialer(DialerOptions{Lookuper: lookuper, KeepAlive: -1})

	conn, err := d.Dial(context.Background(), Addr{Host: "service.test", Port: s.port})
	s.Require().NoError(err)
	s.NoError(conn.Close())

	<-done
}

func (s *DialerTestSuite) TestDialRefused() {
	// Free the port so nobody listens on it.
	s.Require().NoError(s.lis.Close())

	d := NewDialer(DefaultDialerOptions)
	conn, err := d.Dial(context.Background(), Addr{Host: "127.0.0.1", Port: s.port})
	s.Nil(conn)
	s.ErrorIs(err, transport.ErrConnRefused)
}

type otherAddr struct{}

func (otherAddr) Network() transport.Protocol { return transport.Pipe }
func (otherAddr) String() string              { return "pipe" }

func (s *DialerTestSuite) TestDialForeignAddr() {
	_, err := NewDialer(DefaultDialerOptions).Dial(context.Background(), otherAddr{})
	s.Error(err)
}

func TestMapError(t *testing.T) {
	testcases := []struct {
		desc     string
		input    error
		expected error
	}{
		{
			desc:     "eof",
			input:    io.EOF,
			expected: transport.ErrConnClosed,
		},
		{
			desc:     "closed",
			input:    &net.OpError{Op: "read", Err: net.ErrClosed},
			expected: transport.ErrConnClosed,
		},
		{
			desc:     "deadline",
			input:    &net.OpError{Op: "read", Err: os.ErrDeadlineExceeded},
			expected: transport.ErrDeadLineExceeded,
		},
		{
			desc:     "context deadline",
			input:    context.DeadlineExceeded,
			expected: transport.ErrDeadLineExceeded,
		},
		{
			desc:     "unknown host",
			input:    &net.OpError{Op: "dial", Err: &net.DNSError{Name: "nowhere.invalid", IsNotFound: true}},
			expected: transport.ErrHostNotFound,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			require.ErrorIs(t, mapError(tc.input), tc.expected)
		})
	}
}

func TestMapErrorUnknown(t *testing.T) {
	err := &net.AddrError{Err: "weird", Addr: "x"}
	assert.Equal(t, error(err), mapError(err))
}

func TestConn(t *testing.T) {
	test.RunConnTests(t, func(t *testing.T) (transport.Conn, transport.Conn) {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer lis.Close()

		accepted := make(chan net.Conn, 1)
		go func() {
			defer close(accepted)
			if c, err := lis.Accept(); err == nil {
				accepted <- c
			}
		}()

		port := uint16(lis.Addr().(*net.TCPAddr).Port)
		c1, err := NewDialer(DefaultDialerOptions).Dial(context.Background(), Addr{Host: "127.0.0.1", Port: port})
		require.NoError(t, err)

		nc, ok := <-accepted
		require.True(t, ok)
		return c1, &conn{Conn: nc}
	})
}
