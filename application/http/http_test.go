package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	for _, text := range []string{"HTTP/1.1", "HTTP/1.0", "HTTP/2.0", "HTTP/0.9", "HTTP/12.34"} {
		ver, err := ParseVersion([]byte(text))
		require.NoError(t, err, text)
		assert.Equal(t, text, ver.String())
	}

	for _, text := range []string{
		"",
		"1.1",
		"http/1.1",
		"HTTP1.1",
		"HTTP/1",
		"HTTP/1.1.1",
		"HTTP/x.1",
		"HTTP/1.-1",
		"HTTP/.1",
	} {
		_, err := ParseVersion([]byte(text))
		assert.Error(t, err, text)
	}
}

func TestParseField(t *testing.T) {
	testcases := []struct {
		line  string
		name  string
		value string
	}{
		{line: "Host: example.com", name: "Host", value: "example.com"},
		{line: "Content-Type:\t text/html \t", name: "Content-Type", value: "text/html"},
		{line: "X-Empty:", name: "X-Empty", value: ""},
		{line: "X-Colons: a:b:c", name: "X-Colons", value: "a:b:c"},
		{line: "not a token: kept", name: "not a token", value: "kept"},
		{line: "X-Inner: a  b", name: "X-Inner", value: "a  b"},
	}
	for _, tc := range testcases {
		field, err := ParseField([]byte(tc.line))
		require.NoError(t, err, tc.line)
		assert.Equal(t, NewField(tc.name, tc.value), field, tc.line)
	}

	for _, line := range []string{"no colon here", "Host : example.com", "Host\t: example.com"} {
		_, err := ParseField([]byte(line))
		assert.Error(t, err, line)
	}
}

func TestText(t *testing.T) {
	field := NewField("Accept", "*/*")
	assert.Equal(t, "Accept: */*", string(field.Text()))

	assert.Equal(t, "DELETE /items/7 HTTP/1.1",
		string(RequestLine{Method: "DELETE", Target: "/items/7", Version: Version11}.Text()))

	assert.Equal(t, "HTTP/1.0 503 Service Unavailable",
		string(StatusLine{Version: Version{1, 0}, StatusCode: 503, ReasonPhrase: "Service Unavailable"}.Text()))

	// The separator before an empty reason phrase stays.
	assert.Equal(t, "HTTP/1.1 204 ",
		string(StatusLine{Version: Version11, StatusCode: 204}.Text()))
}
