package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stackvity/tabs2spaces/internal/cli"
	"github.com/stackvity/tabs2spaces/internal/cli/config"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// legacyWidthPrefix is the old "-w:<n>" spelling of --width.
const legacyWidthPrefix = "-w:"

// newRootCmd builds the root command. The exit status of a completed run is
// stored in exitCode; RunE only returns errors for unusable configuration.
func newRootCmd(streams cli.Streams, exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabs2spaces [flags] <path|pattern|->...",
		Short: "Replaces tabs with spaces in files, in place.",
		Long: `tabs2spaces converts the files passed as arguments by substituting each tab
with spaces up to the next tab stop. Files are rewritten atomically and only
when their content changes.

Arguments may use '*' and '?' in the file name part; with --rec the pattern is
matched in subdirectories too. The argument '-' filters stdin to stdout.

Line endings can be normalized with --lf or --crlf, and --trim removes
whitespace before each line break. The exit status is the number of arguments
that failed.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			cmd.SilenceUsage = true

			opts, logger, err := config.LoadAndValidate(version, cmd.Flags(), streams.Err)
			if err != nil {
				// Already logged.
				cmd.SilenceErrors = true
				return err
			}
			*exitCode = cli.Run(cmd.Context(), args, opts, logger, streams)
			return nil
		},
	}
	cmd.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// normalizeArgs rewrites "-w:<n>" to "--width=<n>". Arguments after "--" are
// paths and left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if n, ok := strings.CutPrefix(arg, legacyWidthPrefix); ok {
			arg = "--width=" + n
		}
		out = append(out, arg)
	}
	return out
}

// Execute runs the root command against the process arguments and returns
// the exit status.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	code := 0
	cmd := newRootCmd(cli.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}, &code)
	cmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return code
}
