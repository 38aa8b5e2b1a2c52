package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteClasses(t *testing.T) {
	for c := 0; c < 256; c++ {
		b := byte(c)

		assert.Equal(t, b >= '0' && b <= '9', IsDigit(b), "digit %q", b)
		assert.Equal(t, (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z'), IsAlpha(b), "alpha %q", b)
		assert.Equal(t,
			IsDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F'),
			IsHexDigit(b), "hex %q", b)
	}
}

func TestIsValidToken(t *testing.T) {
	valid := []string{"Token", "Content-Length", "x_y.z", "chunked", "!#$%&'*+-.^_`|~", "123"}
	for _, s := range valid {
		assert.True(t, IsValidToken(s), s)
	}

	invalid := []string{"", "Token 123", "Token@123", "a:b", "a\tb", "\"quoted\"", "naïve", "a(b)"}
	for _, s := range invalid {
		assert.False(t, IsValidToken(s), s)
	}
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("200"))
	assert.True(t, IsDigits("0"))
	assert.False(t, IsDigits("-1"))
	assert.False(t, IsDigits("1f"))
	assert.False(t, IsDigits(" 1"))
	assert.False(t, IsDigits(""))
}
