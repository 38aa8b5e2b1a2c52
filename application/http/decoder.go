package http

import (
	"bytes"
	"io"
	"strconv"

	"rawhttp/application/util/rule"
	iolib "rawhttp/lib/io"

	"github.com/pkg/errors"
)

type DecodeOptions struct {
	// AllowSoleLF specifies wheter a single LF character should be recognized as a valid line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	AllowSoleLF bool

	// LenientWhitespace replaces all [whitespaces] into [SP].
	// And also trims preceding and trailinig whitespace.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3-3
	LenientWhitespace bool

	// MaxFieldLineLength sets the limit of field line length on headers.
	MaxFieldLineLength uint

	// MaxStatusLineLength sets the limit of status line length.
	MaxStatusLineLength uint
}

var DefaultDecodeOptions = DecodeOptions{
	AllowSoleLF:         false,
	LenientWhitespace:   false,
	MaxFieldLineLength:  0,
	MaxStatusLineLength: 0,
}

type MessageDecoder struct {
	r    *iolib.UntilReader
	opts DecodeOptions
}

var (
	errLineTooLong       = errors.New("line length exceeeds limit")
	ErrMissingCRBeforeLF = errors.New("missing CR before LF")
)

// readLine returns a line without its terminator.
// It returns [io.EOF] only when the reader ended before any byte of the line,
// and [io.ErrUnexpectedEOF] when it ended in the middle of it.
func (md *MessageDecoder) readLine(limit uint) ([]byte, error) {
	b, err := md.r.ReadUntilLimit([]byte{rule.LF}, limit)
	if err != nil {
		switch {
		case errors.Is(err, iolib.ErrLimitExceeded):
			return nil, errLineTooLong
		case errors.Is(err, io.EOF) && len(b) == 0:
			return nil, io.EOF
		case errors.Is(err, io.EOF):
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	b = b[:len(b)-1] // Remove LF.

	if !md.opts.AllowSoleLF {
		if len(b) == 0 || b[len(b)-1] != rule.CR {
			return nil, ErrMissingCRBeforeLF
		}
		b = b[:len(b)-1] // Remove CR.
	} else if len(b) > 0 && b[len(b)-1] == rule.CR {
		b = b[:len(b)-1]
	}

	if md.opts.LenientWhitespace {
		for _, c := range rule.Whitespaces {
			b = bytes.ReplaceAll(b, []byte{c}, []byte{rule.SP})
		}
		b = bytes.Trim(b, string([]byte{rule.SP}))

		return b, nil
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-4
	b = bytes.ReplaceAll(b, []byte{rule.CR}, []byte{rule.SP})

	return b, nil
}

var (
	ErrFieldLineTooLong   = errors.New("field line length exceeds limit")
	ErrMalformedFieldLine = errors.New("field line is malformed")
)

// DecodeFieldLines reads field lines until the empty line that ends the header section.
// Lines are returned as received. The only check made is the presence of a colon.
func (md *MessageDecoder) DecodeFieldLines() ([][]byte, error) {
	lines := make([][]byte, 0)
	for {
		fieldLine, err := md.readLine(md.opts.MaxFieldLineLength)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				return nil, ErrFieldLineTooLong
			}
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, errors.Wrap(err, "reading line")
		}

		if len(fieldLine) == 0 {
			// An empty line. This means that there are no more headers.
			break
		}

		if bytes.IndexByte(fieldLine, ':') < 0 {
			return nil, ErrMalformedFieldLine
		}

		lines = append(lines, fieldLine)
	}

	return lines, nil
}

var (
	ErrEmptyMessage        = errors.New("no message received")
	ErrStatusLineTooLong   = errors.New("status line length exceeds limit")
	ErrMalformedStatusLine = errors.New("status line is malformed")
)

type ResponseDecoder struct{ MessageDecoder }

func NewResponseDecoder(r *iolib.UntilReader, opts DecodeOptions) *ResponseDecoder {
	return &ResponseDecoder{
		MessageDecoder{r: r, opts: opts},
	}
}

// DecodeStatusLine parses the status line into statLine and returns the line as received.
// Empty lines preceding it are skipped.
func (rd *ResponseDecoder) DecodeStatusLine(statLine *StatusLine) ([]byte, error) {
	var line []byte
	for {
		b, err := rd.readLine(rd.opts.MaxStatusLineLength)
		if err != nil {
			switch {
			case errors.Is(err, errLineTooLong):
				return nil, ErrStatusLineTooLong
			case errors.Is(err, io.EOF):
				return nil, ErrEmptyMessage
			case errors.Is(err, io.ErrUnexpectedEOF):
				return nil, ErrMalformedStatusLine
			}
			return nil, errors.Wrap(err, "reading line")
		}

		// An empty line can be received before message.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-6
		if len(b) > 0 {
			line = b
			break
		}
	}

	parsed, err := parseStatusLine(line)
	if err != nil {
		return nil, ErrMalformedStatusLine
	}

	*statLine = parsed

	return line, nil
}

func parseStatusLine(line []byte) (StatusLine, error) {
	verStr, rest, found := cutOWS(line)
	if !found {
		return StatusLine{}, errors.New("status line is malformed")
	}

	codeStr, reason, found := cutOWS(rest)
	if !found {
		return StatusLine{}, errors.New("status line is malformed")
	}

	ver, err := ParseVersion(verStr)
	if err != nil {
		return StatusLine{}, errors.Wrap(err, "parsing version")
	}

	statusCodeStr := string(codeStr)
	if len(statusCodeStr) != 3 || !rule.IsDigits(statusCodeStr) {
		return StatusLine{}, errors.Errorf("status code is malformed: %q", statusCodeStr)
	}

	statusCode, err := strconv.ParseUint(statusCodeStr, 10, 16)
	if err != nil || statusCode < 100 {
		return StatusLine{}, errors.Errorf("status code is out of range: %q", statusCodeStr)
	}

	// reason-phrase is optional.
	reasonPhrase := string(reason)

	return StatusLine{Version: ver, StatusCode: uint(statusCode), ReasonPhrase: reasonPhrase}, nil
}

// cutOWS splits b around its first run of SP and HTAB.
// The separator must be there, what follows it may be empty.
func cutOWS(b []byte) (before, after []byte, found bool) {
	i := bytes.IndexAny(b, string(rule.OWS))
	if i < 0 {
		return b, nil, false
	}
	return b[:i], bytes.TrimLeft(b[i:], string(rule.OWS)), true
}
