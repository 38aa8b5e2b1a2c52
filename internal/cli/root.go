// Package cli is the rawhttp command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"rawhttp/application/http/actor/client"
	"rawhttp/application/http/semantic"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var version = "dev"

// Exit codes. A status error exits like curl --fail does.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitHTTPError = 22
)

// NewRootCmd builds the command tree writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &requestOptions{}

	root := &cobra.Command{
		Use:     "rawhttp",
		Short:   "Send a single HTTP/1.1 request over a plain TCP connection",
		Version: version,
		Long: `rawhttp writes an HTTP/1.1 request byte by byte to a TCP connection
and prints the response it reads back. Every request uses its own connection
which is closed afterwards.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "header to send as \"Name: value\" (can be used multiple times)")
	flags.DurationVarP(&opts.timeout, "timeout", "t", client.DefaultOptions.Timeout.Read, "timeout of each of dialing, sending and receiving")
	flags.Uint16VarP(&opts.port, "port", "p", 0, "port to connect to, overriding the one in URL")
	flags.StringArrayVar(&opts.resolve, "resolve", nil, "resolve host to addr as \"host:addr\" (can be used multiple times)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log the exchange to stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.StringVarP(&opts.query, "query", "q", "", "print only the part of a JSON body matching this gjson path")
	flags.StringVar(&opts.configPath, "config", "", "YAML file with default port, timeout, headers and resolve entries")
	flags.BoolVarP(&opts.include, "include", "i", false, "print status line and headers before the body")

	root.AddCommand(
		newRequestCmd(semantic.MethodGet, opts, stdout, stderr),
		newRequestCmd(semantic.MethodPost, opts, stdout, stderr),
		newRequestCmd(semantic.MethodPut, opts, stdout, stderr),
		newRequestCmd(semantic.MethodDelete, opts, stdout, stderr),
		newSendCmd(opts, stdout, stderr),
	)

	return root
}

// Execute runs the command line with args and returns the exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintln(stderr, "rawhttp:", err)

	if errors.Is(err, client.ErrStatus) {
		return ExitHTTPError
	}
	return ExitFailure
}
