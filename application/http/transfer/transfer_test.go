package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCodings(t *testing.T) {
	testcases := []struct {
		desc     string
		input    []string
		expected []Coding
	}{
		{
			desc:     "single",
			input:    []string{"chunked"},
			expected: []Coding{CodingChunked},
		},
		{
			desc:     "list with case and spaces",
			input:    []string{"gzip , Chunked"},
			expected: []Coding{"gzip", CodingChunked},
		},
		{
			desc:     "multiple fields",
			input:    []string{"gzip", "chunked"},
			expected: []Coding{"gzip", CodingChunked},
		},
		{
			desc:     "parameters and empty members",
			input:    []string{"foo;q=1,,chunked"},
			expected: []Coding{"foo", CodingChunked},
		},
		{
			desc:     "nothing",
			input:    nil,
			expected: []Coding{},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			values := make([][]byte, 0, len(tc.input))
			for _, v := range tc.input {
				values = append(values, []byte(v))
			}

			assert.Equal(t, tc.expected, ParseCodings(values))
		})
	}
}

func TestIsChunked(t *testing.T) {
	assert.True(t, IsChunked([]Coding{"gzip", CodingChunked}))
	assert.False(t, IsChunked([]Coding{CodingChunked, "gzip"}))
	assert.False(t, IsChunked(nil))
}
