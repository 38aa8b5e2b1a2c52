// Package status holds the status code registry and the client's classification of codes.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15
package status

import "strconv"

// Codes the client treats specially.
const (
	Continue           uint = 100
	SwitchingProtocols uint = 101
	OK                 uint = 200
	NoContent          uint = 204
	NotModified        uint = 304
)

var reasons = map[uint]string{
	100: "Continue",
	101: "Switching Protocols",
	102: "Processing",
	103: "Early Hints",

	200: "OK",
	201: "Created",
	202: "Accepted",
	203: "Non-Authoritative Information",
	204: "No Content",
	205: "Reset Content",
	206: "Partial Content",

	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	305: "Use Proxy",
	307: "Temporary Redirect",
	308: "Permanent Redirect",

	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Content Too Large",
	414: "URI Too Long",
	415: "Unsupported Media Type",
	416: "Range Not Satisfiable",
	417: "Expectation Failed",
	418: "I'm a teapot",
	421: "Misdirected Request",
	422: "Unprocessable Content",
	425: "Too Early",
	426: "Upgrade Required",
	428: "Precondition Required",
	429: "Too Many Requests",
	431: "Request Header Fields Too Large",

	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
	511: "Network Authentication Required",
}

// Text returns the registered reason phrase of code, or "" when it is unknown.
func Text(code uint) string { return reasons[code] }

// Class is the first digit of a status code.
type Class uint

const (
	ClassUnknown Class = iota
	ClassInformational
	ClassSuccessful
	ClassRedirection
	ClassClientError
	ClassServerError
)

// ClassOf returns the class of code. Codes outside 100..599 have no class
// even though the client accepts them up to 999.
func ClassOf(code uint) Class {
	if code < 100 || code > 599 {
		return ClassUnknown
	}
	return Class(code / 100)
}

func (c Class) String() string {
	switch c {
	case ClassInformational:
		return "informational"
	case ClassSuccessful:
		return "successful"
	case ClassRedirection:
		return "redirection"
	case ClassClientError:
		return "client error"
	case ClassServerError:
		return "server error"
	}
	return "Class(" + strconv.FormatUint(uint64(c), 10) + ")"
}

func IsInformational(code uint) bool { return ClassOf(code) == ClassInformational }

// IsSuccess reports whether code counts as a successful exchange.
// Redirections are included as redirects are never followed.
func IsSuccess(code uint) bool {
	class := ClassOf(code)
	return class == ClassSuccessful || class == ClassRedirection
}

// HasNoContent reports whether a response with code never carries content.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.1
func HasNoContent(code uint) bool {
	return IsInformational(code) || code == NoContent || code == NotModified
}
