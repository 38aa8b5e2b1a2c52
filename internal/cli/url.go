package cli

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnsupportedScheme = errors.New("unsupported scheme")

type target struct {
	// host is sent as the Host header and may carry a port.
	host     string
	hostname string
	// path is the request target: path and query.
	path string
}

// parseURL accepts "http://host[:port]/path?query" with the scheme being optional.
// The fragment is dropped as it is never sent.
func parseURL(raw string) (target, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return target{}, errors.Wrap(err, "parsing URL")
	}

	if !strings.EqualFold(u.Scheme, "http") {
		return target{}, errors.Wrapf(ErrUnsupportedScheme, "%s (only http is supported)", u.Scheme)
	}

	if u.Hostname() == "" {
		return target{}, errors.Errorf("no host in URL %q", raw)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return target{host: u.Host, hostname: u.Hostname(), path: path}, nil
}
