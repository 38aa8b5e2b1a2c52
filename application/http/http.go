package http

import (
	"bytes"
	"io"
	"strconv"

	"rawhttp/application/util/rule"

	"github.com/pkg/errors"
)

// Version is an HTTP version as [major, minor].
type Version [2]uint

var Version11 = Version{1, 1}

var versionPrefix = []byte("HTTP/")

// ParseVersion parses HTTP-version, e.g. "HTTP/1.1".
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.3
func ParseVersion(b []byte) (Version, error) {
	rest, ok := bytes.CutPrefix(b, versionPrefix)
	if !ok {
		return Version{}, errors.Errorf("version has no %q prefix: %q", versionPrefix, b)
	}

	major, minor, ok := bytes.Cut(rest, []byte{'.'})
	if !ok {
		return Version{}, errors.Errorf("version has no minor part: %q", b)
	}

	var ver Version
	for i, part := range [][]byte{major, minor} {
		if !rule.IsDigits(string(part)) {
			return Version{}, errors.Errorf("version is not numeric: %q", b)
		}
		n, err := strconv.ParseUint(string(part), 10, strconv.IntSize)
		if err != nil {
			return Version{}, errors.Wrapf(err, "version is out of range: %q", b)
		}
		ver[i] = uint(n)
	}

	return ver, nil
}

func (ver Version) appendText(b []byte) []byte {
	b = append(b, versionPrefix...)
	b = strconv.AppendUint(b, uint64(ver[0]), 10)
	b = append(b, '.')
	return strconv.AppendUint(b, uint64(ver[1]), 10)
}

func (ver Version) Text() []byte   { return ver.appendText(nil) }
func (ver Version) String() string { return string(ver.Text()) }

type RequestLine struct {
	Method  string
	Target  string
	Version Version
}

func (rl RequestLine) appendText(b []byte) []byte {
	b = append(b, rl.Method...)
	b = append(b, rule.SP)
	b = append(b, rl.Target...)
	b = append(b, rule.SP)
	return rl.Version.appendText(b)
}

func (rl RequestLine) Text() []byte { return rl.appendText(nil) }

type Request struct {
	RequestLine
	Headers []Field
}

type StatusLine struct {
	Version      Version
	StatusCode   uint
	ReasonPhrase string
}

// The SP before the reason phrase is written even when it is empty.
func (sl StatusLine) appendText(b []byte) []byte {
	b = sl.Version.appendText(b)
	b = append(b, rule.SP)
	b = strconv.AppendUint(b, uint64(sl.StatusCode), 10)
	b = append(b, rule.SP)
	return append(b, sl.ReasonPhrase...)
}

func (sl StatusLine) Text() []byte { return sl.appendText(nil) }

type Response struct {
	StatusLine
	Headers []Field
	Body    io.Reader
}

// Field is a header or trailer field. Names are kept as received.
type Field struct{ Name, Value []byte }

// NewField is a shorthand for building a field out of strings.
func NewField(name, value string) Field {
	return Field{Name: []byte(name), Value: []byte(value)}
}

// ParseField splits a field line into its name and value.
// The value is stripped of surrounding OWS, the name is not checked to be a token.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5
func ParseField(fieldLine []byte) (Field, error) {
	idx := bytes.IndexByte(fieldLine, ':')
	if idx < 0 {
		return Field{}, errors.Errorf("field line has no colon: %q", fieldLine)
	}

	name := fieldLine[:idx]
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-2
	if n := len(name); n > 0 && bytes.IndexByte(rule.OWS, name[n-1]) >= 0 {
		return Field{}, errors.Errorf("whitespace between field name and colon: %q", fieldLine)
	}

	value := bytes.Trim(fieldLine[idx+1:], string(rule.OWS))

	return Field{Name: name, Value: value}, nil
}

func (f Field) appendText(b []byte) []byte {
	b = append(b, f.Name...)
	b = append(b, ':', rule.SP)
	return append(b, f.Value...)
}

func (f Field) Text() []byte { return f.appendText(nil) }
