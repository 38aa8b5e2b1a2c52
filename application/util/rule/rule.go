// Package rule holds the core ABNF rules HTTP/1.1 messages are written in.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc5234#appendix-B.1
//
// - https://datatracker.ietf.org/doc/html/rfc9110#section-5.6
package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
	VT   byte = 0x0B
	FF   byte = 0x0C
)

var (
	CRLF = []byte{CR, LF}

	// OWS is the set of bytes optional whitespace is made of.
	OWS = []byte{SP, HTAB}

	// Whitespaces are the bytes a lenient parser may treat as SP.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3-3
	Whitespaces = []byte{SP, HTAB, VT, FF, CR}
)

func IsDigit(c byte) bool    { return '0' <= c && c <= '9' }
func IsAlpha(c byte) bool    { return 'a' <= c|0x20 && c|0x20 <= 'z' }
func IsHexDigit(c byte) bool { return IsDigit(c) || ('a' <= c|0x20 && c|0x20 <= 'f') }

// IsTChar reports whether c may appear in a token.
func IsTChar(c byte) bool {
	if IsAlpha(c) || IsDigit(c) {
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// IsValidToken reports whether s is a non-empty run of tchar.
func IsValidToken(s string) bool { return isRunOf(s, IsTChar) }

// IsDigits reports whether s is a non-empty run of DIGIT.
func IsDigits(s string) bool { return isRunOf(s, IsDigit) }

func isRunOf(s string, fn func(byte) bool) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !fn(s[i]) {
			return false
		}
	}
	return true
}
