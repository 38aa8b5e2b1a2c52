package http

import (
	"io"

	"rawhttp/application/util/rule"
	iolib "rawhttp/lib/io"

	"github.com/pkg/errors"
)

type EncodeOptions struct {
	// UseSoleLF terminates lines with LF only. Recipients are not required to accept it.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	UseSoleLF bool
}

var DefaultEncodeOptions = EncodeOptions{
	UseSoleLF: false,
}

type messageEncoder struct {
	w    io.Writer
	opts EncodeOptions
}

func (me *messageEncoder) lineEnd() []byte {
	if me.opts.UseSoleLF {
		return []byte{rule.LF}
	}
	return rule.CRLF
}

// appendHead renders the start line and the header section,
// including the empty line that ends it.
func (me *messageEncoder) appendHead(dst []byte, startLine []byte, headers []Field) []byte {
	end := me.lineEnd()

	dst = append(append(dst, startLine...), end...)
	for _, field := range headers {
		dst = append(field.appendText(dst), end...)
	}
	return append(dst, end...)
}

// encode writes the head in one piece, then copies body if there is one.
func (me *messageEncoder) encode(startLine []byte, headers []Field, body io.Reader) error {
	head := me.appendHead(nil, startLine, headers)
	if _, err := iolib.WriteFull(me.w, head); err != nil {
		return errors.Wrap(err, "writing head")
	}

	if body == nil {
		return nil
	}

	if _, err := io.Copy(me.w, body); err != nil {
		return errors.Wrap(err, "writing body")
	}

	return nil
}

// RequestEncoder renders request heads. Fields are written as given, without checks.
type RequestEncoder struct{ messageEncoder }

func NewRequestEncoder(w io.Writer, opts EncodeOptions) *RequestEncoder {
	return &RequestEncoder{messageEncoder{w: w, opts: opts}}
}

// AppendHead appends the request line and header section of request to dst.
func (re *RequestEncoder) AppendHead(dst []byte, request Request) []byte {
	return re.appendHead(dst, request.RequestLine.appendText(nil), request.Headers)
}

// ResponseEncoder writes responses to w. Stub servers use it in tests.
type ResponseEncoder struct{ messageEncoder }

func NewResponseEncoder(w io.Writer, opts EncodeOptions) *ResponseEncoder {
	return &ResponseEncoder{messageEncoder{w: w, opts: opts}}
}

func (re *ResponseEncoder) Encode(response Response) error {
	return errors.Wrap(
		re.encode(response.StatusLine.appendText(nil), response.Headers, response.Body),
		"encoding response",
	)
}
