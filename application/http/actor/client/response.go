package client

import (
	"strings"
	"unicode/utf8"

	"rawhttp/application/http/semantic/status"
	"rawhttp/application/util/rule"
)

// Response is a complete HTTP response as received.
type Response struct {
	// StatusLine is the first line, without its terminator.
	StatusLine string
	StatusCode uint16

	// Headers are field lines in arrival order, duplicates included.
	Headers []string

	Body string
}

// Values returns values of every header named name, in arrival order.
// Names are compared case-insensitively.
func (r *Response) Values(name string) []string { return fieldValues(r.Headers, name) }

// Get returns the first value of header name, or "" when it is absent.
func (r *Response) Get(name string) string {
	values := r.Values(name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func fieldValues(lines []string, name string) []string {
	values := make([]string, 0)
	for _, line := range lines {
		n, v, found := strings.Cut(line, ":")
		if !found || !strings.EqualFold(strings.Trim(n, string(rule.OWS)), name) {
			continue
		}
		values = append(values, strings.Trim(v, string(rule.OWS)))
	}
	return values
}

// maxErrorMessageLen caps the body excerpt carried by status errors.
const maxErrorMessageLen = 512

// checkStatus turns a response with an unsuccessful status into an [*Error].
// Redirections count as success.
func checkStatus(res *Response, reasonPhrase string) error {
	if status.IsSuccess(uint(res.StatusCode)) {
		return nil
	}

	return &Error{
		Kind:     KindStatus,
		Code:     res.StatusCode,
		Message:  statusMessage(res, reasonPhrase),
		Response: res,
	}
}

// statusMessage picks the body, then the received reason phrase, then the registered one.
func statusMessage(res *Response, reasonPhrase string) string {
	if body := strings.TrimSpace(res.Body); body != "" {
		return truncateUTF8(body, maxErrorMessageLen)
	}
	if reason := strings.TrimSpace(reasonPhrase); reason != "" {
		return reason
	}
	if text := status.Text(uint(res.StatusCode)); text != "" {
		return text
	}
	return "unknown status"
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	// Drop a rune cut in half.
	for i := 0; i < utf8.UTFMax-1 && len(s) > 0; i++ {
		if r, size := utf8.DecodeLastRuneInString(s); r != utf8.RuneError || size != 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
