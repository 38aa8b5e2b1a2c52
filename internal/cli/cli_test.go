package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"strconv"
	"testing"
	"time"

	"rawhttp/application/http/actor/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	method string
	target string
	host   string
	header nethttp.Header
	body   string
}

// serveOnce answers the first connection on a loopback port with response.
func serveOnce(t *testing.T, response string) (uint16, <-chan received) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	ch := make(chan received, 1)
	go func() {
		defer close(ch)

		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		req, err := nethttp.ReadRequest(bufio.NewReader(conn))
		if err != nil {
			return
		}
		body, _ := io.ReadAll(req.Body)

		ch <- received{
			method: req.Method,
			target: req.RequestURI,
			host:   req.Host,
			header: req.Header,
			body:   string(body),
		}

		conn.Write([]byte(response))
	}()

	return uint16(ln.Addr().(*net.TCPAddr).Port), ch
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func localURL(port uint16, path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", port, path)
}

func TestGet(t *testing.T) {
	port, got := serveOnce(t, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nOK")

	code, stdout, stderr := run("get", localURL(port, "/get"))
	assert.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, "OK", stdout)

	req := <-got
	assert.Equal(t, "GET", req.method)
	assert.Equal(t, "/get", req.target)
	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(int(port)), req.host)
}

func TestInclude(t *testing.T) {
	port, _ := serveOnce(t, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nX-A: 1\r\n\r\nOK")

	code, stdout, _ := run("get", "-i", "--no-color", localURL(port, "/"))
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "HTTP/1.1 200 OK\nContent-Length: 2\nX-A: 1\n\nOK", stdout)
}

func TestStatusError(t *testing.T) {
	port, _ := serveOnce(t, "HTTP/1.1 404 Not Found\r\nContent-Length: 7\r\n\r\nmissing")

	code, stdout, stderr := run("get", localURL(port, "/nope"))
	assert.Equal(t, ExitHTTPError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "rawhttp: http 404 error: missing")
}

func TestStatusErrorInclude(t *testing.T) {
	port, _ := serveOnce(t, "HTTP/1.1 500 Internal Server Error\r\nContent-Length: 0\r\n\r\n")

	code, stdout, stderr := run("get", "-i", localURL(port, "/"))
	assert.Equal(t, ExitHTTPError, code)
	assert.Equal(t, "HTTP/1.1 500 Internal Server Error\nContent-Length: 0\n\n", stdout)
	assert.Contains(t, stderr, "http 500 error: Internal Server Error")
}

func TestPostWithHeaders(t *testing.T) {
	port, got := serveOnce(t, "HTTP/1.1 201 Created\r\nContent-Length: 0\r\n\r\n")

	code, _, stderr := run(
		"post", localURL(port, "/items"),
		"-d", `{"name":"x"}`,
		"-H", "Content-Type: application/json",
		"-H", "X-Trace: a",
		"-H", "X-Trace: b",
	)
	require.Equal(t, ExitOK, code, stderr)

	req := <-got
	assert.Equal(t, "POST", req.method)
	assert.Equal(t, `{"name":"x"}`, req.body)
	assert.Equal(t, "application/json", req.header.Get("Content-Type"))
	assert.Equal(t, []string{"a", "b"}, req.header.Values("X-Trace"))
}

func TestPutAndDelete(t *testing.T) {
	port, got := serveOnce(t, "HTTP/1.1 204 No Content\r\n\r\n")
	code, _, _ := run("put", localURL(port, "/items/1"), "-d", "v2")
	assert.Equal(t, ExitOK, code)
	req := <-got
	assert.Equal(t, "PUT", req.method)
	assert.Equal(t, "v2", req.body)

	port, got = serveOnce(t, "HTTP/1.1 204 No Content\r\n\r\n")
	code, _, _ = run("delete", localURL(port, "/items/1"))
	assert.Equal(t, ExitOK, code)
	req = <-got
	assert.Equal(t, "DELETE", req.method)
}

func TestSend(t *testing.T) {
	port, got := serveOnce(t, "HTTP/1.1 200 OK\r\n\r\n")
	code, _, stderr := run("send", "delete", localURL(port, "/x"), "-d", "why")
	require.Equal(t, ExitOK, code, stderr)

	req := <-got
	assert.Equal(t, "DELETE", req.method)
	assert.Equal(t, "why", req.body)

	code, _, stderr = run("send", "PATCH", localURL(port, "/x"))
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, `unsupported method "PATCH"`)
}

func TestQuery(t *testing.T) {
	body := `{"user":{"name":"alice","roles":["admin","dev"]}}`
	response := "HTTP/1.1 200 OK\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body

	port, _ := serveOnce(t, response)
	code, stdout, _ := run("get", "-q", "user.name", localURL(port, "/"))
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "alice\n", stdout)

	port, _ = serveOnce(t, response)
	code, stdout, _ = run("get", "-q", "user.roles.#", localURL(port, "/"))
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "2\n", stdout)

	port, _ = serveOnce(t, response)
	code, _, stderr := run("get", "-q", "user.email", localURL(port, "/"))
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "matched nothing")
}

func TestResolveAndPort(t *testing.T) {
	port, got := serveOnce(t, "HTTP/1.1 200 OK\r\n\r\nresolved")

	code, stdout, stderr := run(
		"get", "http://rawhttp.test/",
		"--resolve", "rawhttp.test:127.0.0.1",
		"-p", strconv.Itoa(int(port)),
	)
	require.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, "resolved", stdout)

	req := <-got
	assert.Equal(t, "rawhttp.test:"+strconv.Itoa(int(port)), req.host)
}

func TestConfigFile(t *testing.T) {
	port, got := serveOnce(t, "HTTP/1.1 200 OK\r\n\r\n")

	path := writeConfig(t, fmt.Sprintf(`
port: %d
headers:
  - "X-From: config"
`, port))

	code, _, stderr := run("get", "http://127.0.0.1/", "--config", path, "-H", "X-From: flag")
	require.Equal(t, ExitOK, code, stderr)

	req := <-got
	assert.Equal(t, []string{"config", "flag"}, req.header.Values("X-From"))
}

func TestFailures(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedPort := uint16(ln.Addr().(*net.TCPAddr).Port)
	ln.Close()

	testcases := []struct {
		desc   string
		args   []string
		stderr string
	}{
		{"https", []string{"get", "https://example.com/"}, "unsupported scheme"},
		{"invalid header", []string{"get", "http://127.0.0.1/", "-H", "Bad Header: x"}, "invalid header name"},
		{"invalid resolve", []string{"get", "http://127.0.0.1/", "--resolve", "nohost"}, "parsing --resolve"},
		{"connection refused", []string{"get", localURL(closedPort, "/")}, "network error: dial"},
		{"missing url", []string{"get"}, "accepts 1 arg(s)"},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			code, stdout, stderr := run(tc.args...)
			assert.Equal(t, ExitFailure, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tc.stderr)
		})
	}
}

func TestClientOptions(t *testing.T) {
	assert.Equal(t, client.DefaultOptions, clientOptions(0))

	opts := clientOptions(time.Minute)
	assert.Equal(t, time.Minute, opts.Timeout.Dial)
	assert.Equal(t, time.Minute, opts.Timeout.Write)
	assert.Equal(t, time.Minute, opts.Timeout.Read)
	assert.Equal(t, client.DefaultOptions.Port, opts.Port)
}
