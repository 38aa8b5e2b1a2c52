// Package transfer implements transfer codings of HTTP/1.1 message bodies.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7
package transfer

import (
	"bytes"
)

type Coding string

const (
	CodingChunked Coding = "chunked"
)

// ParseCodings collects the codings listed in Transfer-Encoding field values, in order.
// Coding names are case-insensitive and returned lowercased.
func ParseCodings(values [][]byte) []Coding {
	codings := make([]Coding, 0)
	for _, value := range values {
		for _, part := range bytes.Split(value, []byte{','}) {
			// Drop transfer parameters.
			name, _, _ := bytes.Cut(part, []byte{';'})
			name = bytes.TrimSpace(name)
			if len(name) == 0 {
				continue
			}
			codings = append(codings, Coding(bytes.ToLower(name)))
		}
	}
	return codings
}

// IsChunked reports whether the final coding applied is chunked,
// which is what delimits a response body.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.4.1
func IsChunked(codings []Coding) bool {
	return len(codings) > 0 && codings[len(codings)-1] == CodingChunked
}
