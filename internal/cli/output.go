package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"rawhttp/application/http/actor/client"
	"rawhttp/application/http/semantic/status"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

type colorScheme struct {
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	HeaderKey   *color.Color
	HeaderValue *color.Color
}

func newColorScheme(enabled bool) *colorScheme {
	scheme := &colorScheme{
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		HeaderKey:   color.New(color.FgCyan),
		HeaderValue: color.New(color.FgWhite),
	}

	for _, c := range []*color.Color{
		scheme.StatusOK, scheme.StatusWarn, scheme.StatusError,
		scheme.HeaderKey, scheme.HeaderValue,
	} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return scheme
}

// colorEnabled reports whether w is a terminal that should get colors.
func colorEnabled(noColor bool, w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type printer struct {
	w      io.Writer
	scheme *colorScheme
}

func newPrinter(w io.Writer, colored bool) *printer {
	return &printer{w: w, scheme: newColorScheme(colored)}
}

func (p *printer) statusColor(code uint16) *color.Color {
	switch status.ClassOf(uint(code)) {
	case status.ClassSuccessful:
		return p.scheme.StatusOK
	case status.ClassInformational, status.ClassRedirection:
		return p.scheme.StatusWarn
	}
	return p.scheme.StatusError
}

func (p *printer) printHead(res *client.Response) {
	p.statusColor(res.StatusCode).Fprintln(p.w, res.StatusLine)
	for _, line := range res.Headers {
		name, value, _ := strings.Cut(line, ":")
		p.scheme.HeaderKey.Fprint(p.w, name)
		fmt.Fprint(p.w, ":")
		p.scheme.HeaderValue.Fprintln(p.w, value)
	}
	fmt.Fprintln(p.w)
}

// printBody writes body as received, or the part matched by query.
func (p *printer) printBody(body, query string) error {
	if query == "" {
		_, err := io.WriteString(p.w, body)
		return errors.Wrap(err, "writing body")
	}

	if !gjson.Valid(body) {
		return errors.New("body is not JSON")
	}

	result := gjson.Get(body, query)
	if !result.Exists() {
		return errors.Errorf("query %q matched nothing", query)
	}

	_, err := fmt.Fprintln(p.w, result.String())
	return errors.Wrap(err, "writing query result")
}
