package cli

import (
	"strings"

	"rawhttp/application/http"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

// parseHeader parses "Name: value" given with -H.
func parseHeader(s string) (http.Field, error) {
	name, value, found := strings.Cut(s, ":")
	if !found {
		return http.Field{}, errors.Errorf("header must be \"Name: value\", got %q", s)
	}

	value = strings.Trim(value, " \t")

	if !httpguts.ValidHeaderFieldName(name) {
		return http.Field{}, errors.Errorf("invalid header name %q", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return http.Field{}, errors.Errorf("invalid value for header %s", name)
	}

	return http.NewField(name, value), nil
}
