package iolib

import "io"

// LimitedReader delivers at most N bytes of R, then reports [io.EOF].
// N is decremented as bytes are read, so what is left of it tells how much never arrived.
type LimitedReader struct {
	R io.Reader
	N uint
}

func LimitReader(r io.Reader, n uint) *LimitedReader { return &LimitedReader{R: r, N: n} }

func (lr *LimitedReader) Read(p []byte) (int, error) {
	if lr.N == 0 {
		return 0, io.EOF
	}

	n, err := lr.R.Read(p[:min(uint(len(p)), lr.N)])
	lr.N -= uint(n)
	return n, err
}
