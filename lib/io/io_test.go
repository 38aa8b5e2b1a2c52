package iolib

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteFull(t *testing.T) {
	data := []byte("Hello, World!")
	var buf bytes.Buffer

	written, err := WriteFull(&buf, data)
	assert.NoError(t, err)
	assert.Equal(t, uint(len(data)), written)
	assert.Equal(t, data, buf.Bytes())
}

type stingyWriter struct {
	buf   bytes.Buffer
	limit int
}

func (sw *stingyWriter) Write(p []byte) (int, error) {
	if len(p) > sw.limit {
		p = p[:sw.limit]
	}
	return sw.buf.Write(p)
}

func TestWriteFullShortWrites(t *testing.T) {
	data := []byte("GET / HTTP/1.1\r\n\r\n")
	w := &stingyWriter{limit: 3}

	written, err := WriteFull(w, data)
	assert.NoError(t, err)
	assert.Equal(t, uint(len(data)), written)
	assert.Equal(t, data, w.buf.Bytes())
}

func TestWriteFullStalled(t *testing.T) {
	w := &stingyWriter{limit: 0}

	written, err := WriteFull(w, []byte("x"))
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Zero(t, written)
}
