package iolib

import (
	"bytes"
	"errors"
	"io"
)

var (
	ErrZeroLenDelim  = errors.New("delim has zero length")
	ErrLimitExceeded = errors.New("delim not found within limit")
)

const fillSize = 1024

// UntilReader reads up to a delimiter, keeping what it read past it for later reads.
type UntilReader struct {
	r io.Reader

	pending []byte // Read from r, not handed out yet.
	chunk   []byte
	err     error // Sticky error of r.
}

func NewUntilReader(r io.Reader) *UntilReader {
	return &UntilReader{r: r, chunk: make([]byte, fillSize)}
}

// Read hands out pending bytes first, then reads from the underlying reader.
func (ur *UntilReader) Read(p []byte) (int, error) {
	if len(ur.pending) > 0 {
		n := copy(p, ur.pending)
		ur.pending = ur.pending[n:]
		return n, nil
	}
	if ur.err != nil {
		return 0, ur.err
	}
	return ur.r.Read(p)
}

// ReadUntil returns bytes up to and including delim.
// If the reader fails first, everything read is returned with the error.
func (ur *UntilReader) ReadUntil(delim []byte) ([]byte, error) {
	return ur.ReadUntilLimit(delim, 0)
}

// ReadUntilLimit is ReadUntil returning at most limit bytes, delim included.
// When delim is not within them, the limit bytes are returned with [ErrLimitExceeded].
// Zero limit means no limit.
func (ur *UntilReader) ReadUntilLimit(delim []byte, limit uint) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrZeroLenDelim
	}

	searched := 0
	for {
		// delim may have started in the bytes already searched.
		from := max(0, searched-len(delim)+1)
		if idx := bytes.Index(ur.pending[from:], delim); idx >= 0 {
			end := from + idx + len(delim)
			if limit == 0 || uint(end) <= limit {
				return ur.take(end), nil
			}
		}
		searched = len(ur.pending)

		if limit > 0 && uint(len(ur.pending)) >= limit {
			return ur.take(int(limit)), ErrLimitExceeded
		}

		if err := ur.fill(); err != nil {
			return ur.take(len(ur.pending)), err
		}
	}
}

func (ur *UntilReader) take(n int) []byte {
	b := bytes.Clone(ur.pending[:n])
	ur.pending = ur.pending[n:]
	return b
}

// fill appends one read of the underlying reader to pending.
// An error is reported once nothing was read.
func (ur *UntilReader) fill() error {
	if ur.err != nil {
		return ur.err
	}

	n, err := ur.r.Read(ur.chunk)
	ur.pending = append(ur.pending, ur.chunk[:n]...)
	if err != nil {
		ur.err = err
		if n == 0 {
			return err
		}
	}
	return nil
}
