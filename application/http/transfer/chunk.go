package transfer

import (
	"bytes"
	"io"
	"strconv"

	"rawhttp/application/http"
	"rawhttp/application/util/rule"
	iolib "rawhttp/lib/io"

	"github.com/pkg/errors"
)

// ErrMalformedChunk is returned when chunk framing is broken.
// Errors of the underlying reader are passed through as is,
// except for [io.EOF] which becomes [io.ErrUnexpectedEOF].
var ErrMalformedChunk = errors.New("chunk is malformed")

// MaxChunkLineLength bounds chunk size lines and trailer field lines, terminator included.
const MaxChunkLineLength = 4096

// ChunkedReader decodes a chunked body into the bytes it carries.
// Chunk extensions are checked and dropped.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7.1
type ChunkedReader struct {
	r *iolib.UntilReader

	remain   uint // data left in the current chunk
	trailers []http.Field
	err      error
}

var _ io.Reader = (*ChunkedReader)(nil)

// NewChunkedReader reads chunks from r. After the last chunk,
// r is positioned right after the trailer section.
func NewChunkedReader(r *iolib.UntilReader) *ChunkedReader {
	return &ChunkedReader{r: r}
}

// Trailers returns the trailer fields. They are available once Read returned [io.EOF].
func (cr *ChunkedReader) Trailers() []http.Field { return cr.trailers }

func (cr *ChunkedReader) Read(p []byte) (int, error) {
	if cr.err != nil {
		return 0, cr.err
	}

	if cr.remain == 0 {
		size, err := cr.readChunkLine()
		if err != nil {
			return 0, cr.setErr(errors.Wrap(err, "reading chunk size"))
		}

		if size == 0 {
			if err := cr.readTrailers(); err != nil {
				return 0, cr.setErr(errors.Wrap(err, "reading trailers"))
			}
			return 0, cr.setErr(io.EOF)
		}
		cr.remain = size
	}

	if uint(len(p)) > cr.remain {
		p = p[:cr.remain]
	}

	n, err := cr.r.Read(p)
	cr.remain -= uint(n)
	if err == nil && cr.remain == 0 {
		err = cr.readDataEnd()
	}
	if err != nil {
		return n, cr.setErr(errors.Wrap(err, "reading chunk data"))
	}

	return n, nil
}

func (cr *ChunkedReader) setErr(err error) error {
	if errors.Is(err, io.EOF) && err != io.EOF {
		err = io.ErrUnexpectedEOF
	}
	cr.err = err
	return err
}

// readDataEnd consumes the CRLF after chunk data.
func (cr *ChunkedReader) readDataEnd() error {
	var crlf [2]byte
	if _, err := io.ReadFull(cr.r, crlf[:]); err != nil {
		return err
	}

	if !bytes.Equal(crlf[:], rule.CRLF) {
		return errors.Wrap(ErrMalformedChunk, "chunk data is not followed by CRLF")
	}

	return nil
}

func (cr *ChunkedReader) readChunkLine() (uint, error) {
	line, err := cr.readLine()
	if err != nil {
		return 0, err
	}

	size, exts, _ := bytes.Cut(line, []byte{';'})
	n, err := parseChunkSize(bytes.TrimRight(size, string(rule.OWS)))
	if err != nil {
		return 0, errors.Wrap(ErrMalformedChunk, err.Error())
	}

	if len(exts) > 0 {
		if err := checkExtensions(exts); err != nil {
			return 0, errors.Wrap(ErrMalformedChunk, err.Error())
		}
	}

	return n, nil
}

func parseChunkSize(b []byte) (uint, error) {
	if len(b) == 0 {
		return 0, errors.New("chunk size is empty")
	}
	for _, c := range b {
		if !rule.IsHexDigit(c) {
			return 0, errors.Errorf("chunk size is not hex: %q", b)
		}
	}

	n, err := strconv.ParseUint(string(b), 16, strconv.IntSize)
	if err != nil {
		return 0, errors.Errorf("chunk size is out of range: %q", b)
	}

	return uint(n), nil
}

// checkExtensions validates `*( BWS ";" BWS chunk-ext-name [ BWS "=" BWS chunk-ext-val ] )`
// with the leading ";" already removed.
func checkExtensions(b []byte) error {
	for _, ext := range bytes.Split(b, []byte{';'}) {
		name, value, hasValue := bytes.Cut(ext, []byte{'='})

		name = bytes.Trim(name, string(rule.OWS))
		if !rule.IsValidToken(string(name)) {
			return errors.Errorf("invalid chunk extension name: %q", name)
		}

		value = bytes.Trim(value, string(rule.OWS))
		if hasValue && len(value) == 0 {
			return errors.Errorf("chunk extension %q has an empty value", name)
		}
	}
	return nil
}

func (cr *ChunkedReader) readTrailers() error {
	for {
		line, err := cr.readLine()
		if err != nil {
			return err
		}

		if len(line) == 0 {
			return nil
		}

		field, err := http.ParseField(line)
		if err != nil {
			return errors.Wrap(ErrMalformedChunk, err.Error())
		}
		cr.trailers = append(cr.trailers, field)
	}
}

// readLine reads a CRLF terminated line and cuts the terminator.
func (cr *ChunkedReader) readLine() ([]byte, error) {
	line, err := cr.r.ReadUntilLimit(rule.CRLF, MaxChunkLineLength)
	if err != nil {
		if errors.Is(err, iolib.ErrLimitExceeded) {
			return nil, errors.Wrap(ErrMalformedChunk, "line too long")
		}
		return nil, err
	}

	return line[:len(line)-len(rule.CRLF)], nil
}

// ChunkedWriter encodes each Write as one chunk.
// Close ends the body with the last chunk and Trailer.
type ChunkedWriter struct {
	w io.Writer

	// Trailer is sent on Close.
	Trailer []http.Field
}

var _ io.WriteCloser = (*ChunkedWriter)(nil)

func NewChunkedWriter(w io.Writer) *ChunkedWriter {
	return &ChunkedWriter{w: w}
}

func (cw *ChunkedWriter) Write(p []byte) (int, error) {
	// A zero sized chunk would end the body.
	if len(p) == 0 {
		return 0, nil
	}

	buf := make([]byte, 0, len(p)+20)
	buf = strconv.AppendUint(buf, uint64(len(p)), 16)
	buf = append(buf, rule.CRLF...)
	buf = append(buf, p...)
	buf = append(buf, rule.CRLF...)

	if _, err := iolib.WriteFull(cw.w, buf); err != nil {
		return 0, errors.Wrap(err, "writing chunk")
	}

	return len(p), nil
}

// Close does not close the underlying writer.
func (cw *ChunkedWriter) Close() error {
	buf := append([]byte{'0'}, rule.CRLF...)
	for _, field := range cw.Trailer {
		buf = append(append(buf, field.Text()...), rule.CRLF...)
	}
	buf = append(buf, rule.CRLF...)

	if _, err := iolib.WriteFull(cw.w, buf); err != nil {
		return errors.Wrap(err, "writing last chunk")
	}

	return nil
}
