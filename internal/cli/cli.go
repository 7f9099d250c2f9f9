// Package cli runs a conversion for the command line: it wires the CLI hooks,
// the optional TUI and the git filter into the library, contains errors per
// argument and turns the outcome into an exit status.
package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/stackvity/tabs2spaces/internal/cli/git"
	"github.com/stackvity/tabs2spaces/internal/cli/hooks"
	"github.com/stackvity/tabs2spaces/internal/cli/ui"
	"github.com/stackvity/tabs2spaces/pkg/converter"
)

// StdinArgument selects the streaming filter from In to Out.
const StdinArgument = "-"

// MaxExitCode caps the exit status, which counts failed arguments.
const MaxExitCode = 255

// Streams are the standard streams of the process.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run converts every argument and returns the exit status: the number of
// arguments that failed, capped at MaxExitCode. Failures never stop the run.
func Run(ctx context.Context, args []string, opts converter.Options, logger *slog.Logger, streams Streams) int {
	for _, arg := range args {
		if arg == StdinArgument {
			if len(args) > 1 {
				logger.Error("The stdin argument '-' cannot be combined with other arguments", slog.Int("arguments", len(args)))
				return 1
			}
			return runStream(ctx, opts, logger, streams)
		}
	}

	if opts.GitTracked {
		opts.FileFilter = git.NewTrackedFilter(opts.Logger)
	}

	useTUI := opts.TuiEnabled && !opts.Verbose && isTerminal(streams.Err)
	runLogger := logger
	var program *tea.Program
	var tuiProg hooks.TUIProgram
	var heldLogs *bytes.Buffer
	if useTUI {
		// Records are held back while the TUI owns the terminal.
		heldLogs = &bytes.Buffer{}
		handler := slog.NewTextHandler(heldLogs, &slog.HandlerOptions{Level: slog.LevelInfo})
		opts.Logger = handler
		runLogger = slog.New(handler)
		program = tea.NewProgram(ui.NewModel(opts.AppVersion), tea.WithOutput(streams.Err), tea.WithContext(ctx))
		tuiProg = program
	}
	opts.EventHooks = hooks.NewCLIHooks(runLogger, useTUI, opts.Verbose, tuiProg)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	tuiDone := make(chan struct{})
	if program != nil {
		go func() {
			defer close(tuiDone)
			final, err := program.Run()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				runLogger.Warn("Terminal UI stopped", slog.Any("error", err))
			}
			if m, ok := final.(*ui.Model); ok && m.Interrupted() {
				runLogger.Info("Interrupted from the terminal UI, cancelling run")
				cancel()
			}
		}()
	}

	report, errs, err := converter.ConvertPaths(runCtx, args, opts)

	if program != nil {
		if err != nil {
			program.Quit()
		}
		<-tuiDone
		_, _ = streams.Err.Write(heldLogs.Bytes())
	}
	if err != nil {
		logger.Error("Conversion could not start", slog.Any("error", err))
		return 1
	}

	failed := 0
	for i, argErr := range errs {
		if argErr == nil {
			continue
		}
		failed++
		logArgumentError(logger, i, args[i], argErr)
	}

	if writeErr := report.Write(streams.Out, opts.OutputFormat); writeErr != nil {
		logger.Error("Failed to write report", slog.Any("error", writeErr))
		failed = max(failed, 1)
	}
	return min(failed, MaxExitCode)
}

// runStream filters In to Out. The exit status is 0 or 1.
func runStream(ctx context.Context, opts converter.Options, logger *slog.Logger, streams Streams) int {
	cfg := opts.TransformConfig()
	written, err := converter.ConvertStream(ctx, streams.In, streams.Out, cfg)
	if err != nil {
		logArgumentError(logger, 0, StdinArgument, err)
		return 1
	}
	logger.Debug("Stream converted", slog.Int64("bytes", written))
	return 0
}

// logArgumentError logs every cause joined into err, one record each, with
// the paths of file system failures.
func logArgumentError(logger *slog.Logger, index int, arg string, err error) {
	for _, cause := range flatten(err) {
		attrs := []any{
			slog.Int("index", index),
			slog.String("argument", arg),
			slog.Any("error", cause),
		}
		var ioErr *converter.IOError
		if errors.As(cause, &ioErr) {
			attrs = append(attrs, slog.String("op", ioErr.Op), slog.String("path", ioErr.Path))
			if ioErr.Dest != "" {
				attrs = append(attrs, slog.String("dest", ioErr.Dest))
			}
		}
		logger.Error("Argument failed", attrs...)
	}
}

// flatten expands errors.Join trees. An *IOError is a leaf even though it
// unwraps to several errors.
func flatten(err error) []error {
	if _, ok := err.(*converter.IOError); ok {
		return []error{err}
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, flatten(e)...)
	}
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
