package cli

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"rawhttp/application/http"
	"rawhttp/application/http/actor/client"
	"rawhttp/application/http/semantic"
	"rawhttp/application/util/domain"
	"rawhttp/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type requestOptions struct {
	headers    []string
	timeout    time.Duration
	port       uint16
	resolve    []string
	verbose    bool
	noColor    bool
	query      string
	configPath string
	include    bool

	data string
}

func newRequestCmd(method semantic.Method, opts *requestOptions, stdout, stderr io.Writer) *cobra.Command {
	name := strings.ToLower(method.String())

	cmd := &cobra.Command{
		Use:   name + " URL",
		Short: "Send a " + method.String() + " request to URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.applyConfig(cmd); err != nil {
				return err
			}

			var body *string
			if method.HasBody() {
				body = &opts.data
			}

			return send(cmd.Context(), method, args[0], body, opts, stdout, stderr)
		},
	}

	if method.HasBody() {
		cmd.Flags().StringVarP(&opts.data, "data", "d", "", "request body")
	}

	return cmd
}

// newSendCmd takes the method as an argument.
// The body is sent only when --data is given.
func newSendCmd(opts *requestOptions, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send METHOD URL",
		Short: "Send a request with any of GET, POST, PUT and DELETE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, ok := semantic.ParseMethod(args[0])
			if !ok {
				return errors.Errorf("unsupported method %q", args[0])
			}

			if err := opts.applyConfig(cmd); err != nil {
				return err
			}

			var body *string
			if cmd.Flags().Changed("data") {
				body = &opts.data
			}

			return send(cmd.Context(), method, args[1], body, opts, stdout, stderr)
		},
	}

	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "request body")

	return cmd
}

// applyConfig fills in values of the config file that were not given as flags.
// Headers and resolve entries of the file come before those of flags.
func (o *requestOptions) applyConfig(cmd *cobra.Command) error {
	if o.configPath == "" {
		return nil
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("port") && cfg.Port != 0 {
		o.port = cfg.Port
	}
	if !flags.Changed("timeout") && cfg.Timeout != 0 {
		o.timeout = cfg.Timeout
	}
	o.headers = append(cfg.Headers, o.headers...)
	o.resolve = append(cfg.Resolve, o.resolve...)

	return nil
}

func send(
	ctx context.Context,
	method semantic.Method, rawURL string, body *string,
	opts *requestOptions,
	stdout, stderr io.Writer,
) error {
	target, err := parseURL(rawURL)
	if err != nil {
		return err
	}

	host := target.host
	if opts.port != 0 {
		host = net.JoinHostPort(target.hostname, strconv.FormatUint(uint64(opts.port), 10))
	}

	headers := make([]http.Field, 0, len(opts.headers))
	for _, h := range opts.headers {
		field, err := parseHeader(h)
		if err != nil {
			return err
		}
		headers = append(headers, field)
	}

	c, err := newClient(opts, stderr)
	if err != nil {
		return err
	}

	out := newPrinter(stdout, colorEnabled(opts.noColor, stdout))

	res, err := c.Send(ctx, method, host, target.path, headers, body)
	if err != nil {
		var e *client.Error
		if errors.As(err, &e) && e.Response != nil && opts.include {
			out.printHead(e.Response)
		}
		return err
	}

	if opts.include {
		out.printHead(res)
	}
	return out.printBody(res.Body, opts.query)
}

func newClient(opts *requestOptions, stderr io.Writer) (*client.Client, error) {
	dialerOpts := tcp.DefaultDialerOptions
	if len(opts.resolve) > 0 {
		set := make(map[string][]netip.Addr)
		for _, entry := range opts.resolve {
			host, addr, err := domain.ParseOverride(entry)
			if err != nil {
				return nil, errors.Wrap(err, "parsing --resolve")
			}
			host = strings.ToLower(host)
			set[host] = append(set[host], addr)
		}
		dialerOpts.Lookuper = domain.NewMapLookuper(set)
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return client.New(tcp.NewDialer(dialerOpts), logger, clock.New(), clientOptions(opts.timeout)), nil
}

// clientOptions applies timeout to dialing, sending and receiving alike.
func clientOptions(timeout time.Duration) client.Options {
	opts := client.DefaultOptions
	if timeout > 0 {
		opts.Timeout.Dial = timeout
		opts.Timeout.Write = timeout
		opts.Timeout.Read = timeout
	}
	return opts
}
