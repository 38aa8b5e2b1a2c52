// Package iolib holds small reader and writer helpers shared by the codec and the client.
package iolib

import "io"

// WriteFull writes buf to w until everything is written or w fails.
// It returns the number of bytes written either way.
func WriteFull(w io.Writer, buf []byte) (uint, error) {
	total := uint(0)
	for total < uint(len(buf)) {
		n, err := w.Write(buf[total:])
		total += uint(n)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}
