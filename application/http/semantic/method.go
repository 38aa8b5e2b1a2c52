package semantic

import "strings"

type Method string

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-9
const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// ParseMethod looks up one of the supported methods, ignoring case.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(s))
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return m, true
	}
	return "", false
}

// HasBody reports whether requests with this method carry content when sent by the client.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut
}

func (m Method) String() string { return string(m) }
