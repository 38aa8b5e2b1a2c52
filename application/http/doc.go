// Package http implements the HTTP/1.1 message syntax used by the client:
// request serialization, status line and field line decoding.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
