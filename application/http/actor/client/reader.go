package client

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"rawhttp/application/http"
	"rawhttp/application/http/semantic/status"
	"rawhttp/application/http/transfer"
	"rawhttp/application/util/rule"
	iolib "rawhttp/lib/io"
	"rawhttp/transport"

	"github.com/pkg/errors"
)

type readState uint8

const (
	awaitingStatusLine readState = iota
	awaitingHeaders
	awaitingBody
	complete
	failed
)

func (s readState) String() string {
	switch s {
	case awaitingStatusLine:
		return "awaiting status line"
	case awaitingHeaders:
		return "awaiting headers"
	case awaitingBody:
		return "awaiting body"
	case complete:
		return "complete"
	case failed:
		return "failed"
	}
	return "unknown"
}

// maxInterimResponses bounds 1xx responses skipped before the final one.
const maxInterimResponses = 16

var errBodyTooLarge = errors.New("body exceeds limit")

// responseReader reads exactly one final response off a stream.
type responseReader struct {
	r    *iolib.UntilReader
	dec  *http.ResponseDecoder
	opts ReceiveOptions

	logger *slog.Logger

	state   readState
	err     error
	interim int

	statusLine []byte
	status     http.StatusLine
	headers    []string
	body       []byte
}

func newResponseReader(r io.Reader, opts ReceiveOptions, logger *slog.Logger) *responseReader {
	ur := iolib.NewUntilReader(r)
	return &responseReader{
		r:      ur,
		dec:    http.NewResponseDecoder(ur, opts.Decode),
		opts:   opts,
		logger: logger,
		state:  awaitingStatusLine,
	}
}

// read runs until the response is complete or reading failed.
// The returned error is always an [*Error].
func (rr *responseReader) read() (*Response, error) {
	for rr.state != complete && rr.state != failed {
		switch rr.state {
		case awaitingStatusLine:
			rr.readStatusLine()
		case awaitingHeaders:
			rr.readHeaders()
		case awaitingBody:
			rr.readBody()
		}
	}

	if rr.state == failed {
		return nil, rr.err
	}

	return &Response{
		StatusLine: string(rr.statusLine),
		StatusCode: uint16(rr.status.StatusCode),
		Headers:    rr.headers,
		Body:       string(rr.body),
	}, nil
}

func (rr *responseReader) fail(err error, format string, args ...any) {
	rr.state = failed
	if ce, ok := asConnError(err); ok {
		rr.err = networkError(ce)
		return
	}
	rr.err = invalidResponse(err, format, args...)
}

func (rr *responseReader) readStatusLine() {
	line, err := rr.dec.DecodeStatusLine(&rr.status)
	if err != nil {
		switch {
		case errors.Is(err, http.ErrEmptyMessage):
			rr.fail(err, "empty response")
		case errors.Is(err, http.ErrStatusLineTooLong):
			rr.fail(err, "status line too long")
		default:
			rr.fail(err, "malformed status line")
		}
		return
	}

	rr.statusLine = line
	rr.state = awaitingHeaders
}

func (rr *responseReader) readHeaders() {
	lines, err := rr.dec.DecodeFieldLines()
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMalformedFieldLine):
			rr.fail(err, "malformed header")
		case errors.Is(err, http.ErrFieldLineTooLong):
			rr.fail(err, "header line too long")
		default:
			rr.fail(err, "truncated header section")
		}
		return
	}

	code := rr.status.StatusCode
	if status.IsInformational(code) && code != status.SwitchingProtocols {
		// Interim response. The final one follows on the same stream.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.2
		rr.interim++
		if rr.interim > maxInterimResponses {
			rr.fail(nil, "too many interim responses")
			return
		}

		rr.logger.Debug("skipping interim response", slog.Uint64("status", uint64(code)))
		rr.state = awaitingStatusLine
		return
	}

	rr.headers = make([]string, 0, len(lines))
	for _, line := range lines {
		rr.headers = append(rr.headers, string(line))
	}
	rr.state = awaitingBody
}

func (rr *responseReader) readBody() {
	if status.HasNoContent(rr.status.StatusCode) {
		rr.body = []byte{}
		rr.state = complete
		return
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3
	codings := transfer.ParseCodings(rr.fieldValues("Transfer-Encoding"))
	contentLengths := fieldValues(rr.headers, "Content-Length")

	switch {
	case transfer.IsChunked(codings):
		rr.readChunked()
	case len(codings) > 0:
		// Not chunked. The body is delimited by close.
		rr.readUntilClose()
	case len(contentLengths) > 0:
		rr.readContentLength(contentLengths)
	default:
		rr.readUntilClose()
	}
}

func (rr *responseReader) fieldValues(name string) [][]byte {
	values := fieldValues(rr.headers, name)
	b := make([][]byte, 0, len(values))
	for _, v := range values {
		b = append(b, []byte(v))
	}
	return b
}

func (rr *responseReader) readChunked() {
	cr := transfer.NewChunkedReader(rr.r)
	body, err := rr.readAll(cr)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			rr.fail(err, "body exceeds limit")
		case errors.Is(err, transfer.ErrMalformedChunk):
			rr.fail(err, "malformed chunked body")
		default:
			rr.fail(err, "truncated chunked body")
		}
		return
	}

	if trailers := cr.Trailers(); len(trailers) > 0 {
		rr.logger.Debug("discarding trailers", slog.Int("count", len(trailers)))
	}

	rr.body = body
	rr.state = complete
}

func (rr *responseReader) readContentLength(values []string) {
	length, err := parseContentLength(values)
	if err != nil {
		rr.fail(err, "malformed content length")
		return
	}

	lr := &iolib.LimitedReader{R: rr.r, N: length}
	body, err := rr.readAll(lr)
	if err != nil {
		rr.fail(err, "body exceeds limit")
		return
	}

	if got := uint(len(body)); got < length {
		rr.fail(nil, "truncated body: want %d bytes, got %d", length, got)
		return
	}

	rr.body = body
	rr.state = complete
}

func (rr *responseReader) readUntilClose() {
	body, err := rr.readAll(rr.r)
	if err != nil {
		rr.fail(err, "body exceeds limit")
		return
	}

	rr.body = body
	rr.state = complete
}

// readAll reads r to EOF, applying the body size limit.
func (rr *responseReader) readAll(r io.Reader) ([]byte, error) {
	limit := rr.opts.MaxBodySize
	if limit > 0 {
		r = iolib.LimitReader(r, limit+1)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if limit > 0 && uint(len(body)) > limit {
		return nil, errBodyTooLarge
	}

	return body, nil
}

// parseContentLength accepts repeated values only when they are all the same.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.5
func parseContentLength(values []string) (uint, error) {
	var (
		length uint
		seen   bool
	)
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.Trim(part, string(rule.OWS))
			if !rule.IsDigits(part) {
				return 0, errors.Errorf("content length is not a number: %q", part)
			}

			n, err := strconv.ParseUint(part, 10, strconv.IntSize)
			if err != nil {
				return 0, errors.Wrapf(err, "content length is out of range: %q", part)
			}

			if seen && uint(n) != length {
				return 0, errors.Errorf("content length values differ: %d, %d", length, n)
			}
			length, seen = uint(n), true
		}
	}

	return length, nil
}

// connReader reports the end of the peer's stream as [io.EOF],
// and marks every other failure of conn as a [connError].
type connReader struct{ conn transport.Conn }

func (r *connReader) Read(p []byte) (int, error) {
	n, err := r.conn.Read(p)
	if err != nil {
		if errors.Is(err, transport.ErrConnClosed) {
			return n, io.EOF
		}
		return n, &connError{op: "read response", err: err}
	}
	return n, nil
}
