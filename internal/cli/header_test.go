package cli

import (
	"testing"

	"rawhttp/application/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	testcases := []struct {
		in       string
		expected http.Field
	}{
		{"Accept: application/json", http.NewField("Accept", "application/json")},
		{"x-lower:value", http.NewField("x-lower", "value")},
		{"X-Empty:", http.NewField("X-Empty", "")},
		{"X-Spaces: \t a b \t", http.NewField("X-Spaces", "a b")},
		{"X-Colon: a:b", http.NewField("X-Colon", "a:b")},
	}

	for _, tc := range testcases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseHeader(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestParseHeaderInvalid(t *testing.T) {
	for _, in := range []string{
		"NoColon",
		": value",
		"Bad Name: value",
		"X-Nl: a\nb",
		"X-Ctl: a\x00b",
	} {
		_, err := parseHeader(in)
		assert.Error(t, err, "%q", in)
	}
}
