// Package converter rewrites text files in place: tabs become spaces up to the
// next tab stop, line endings are optionally normalized and trailing whitespace
// is optionally trimmed.
//
// Transform is the pure in-memory transducer. NewTransformer exposes the same
// machine as a golang.org/x/text/transform.Transformer, and ConvertStream uses
// it to filter a reader into a writer. ConvertPath and ConvertPaths drive the
// batch mode: resolve wildcard arguments, transform each file and replace
// changed files atomically.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/text/transform"
)

// streamChunk is the initial read and write buffer size of ConvertStream.
const streamChunk = 32 * 1024

// ConvertPath converts every file named by path, which may end in a wildcard
// component, and calls the OnRunComplete hook with the report.
func ConvertPath(ctx context.Context, path string, opts Options) (Report, error) {
	report, errs, err := ConvertPaths(ctx, []string{path}, opts)
	if err != nil {
		return report, err
	}
	return report, errs[0]
}

// ConvertPaths converts each argument in order. errs has one entry per
// argument, nil for an argument that succeeded. err is only set when opts are
// invalid, in which case nothing was touched.
func ConvertPaths(ctx context.Context, args []string, opts Options) (report Report, errs []error, err error) {
	engine, err := NewEngine(opts)
	if err != nil {
		return Report{}, nil, err
	}
	logger := engine.logger

	startTime := time.Now()
	report = Report{
		Summary: ReportSummary{
			Arguments:      make([]string, 0, len(args)),
			ProfileUsed:    engine.opts.ProfileName,
			ConfigFilePath: engine.opts.ConfigFilePath,
			TabWidth:       engine.opts.TabWidth,
			LineEnding:     engine.opts.LineEnding,
			Trim:           engine.opts.Trim,
			Recursive:      engine.opts.Recursive,
			CheckOnly:      engine.opts.CheckOnly,
			Concurrency:    engine.concurrency,
			Timestamp:      startTime.UTC(),
			SchemaVersion:  ReportSchemaVersion,
		},
		Files:        []FileResult{},
		SkippedFiles: []SkippedInfo{},
		Errors:       []ErrorInfo{},
	}

	errs = make([]error, len(args))
	for i, arg := range args {
		argReport, argErr := engine.Run(ctx, arg)
		report.Merge(argReport)
		errs[i] = argErr
	}
	report.Summary.DurationSeconds = time.Since(startTime).Seconds()

	logger.Info("Conversion run finished",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("arguments", len(args)),
		slog.Int("changed", report.Summary.ChangedCount),
		slog.Int("unchanged", report.Summary.UnchangedCount),
		slog.Int("skipped", report.Summary.SkippedCount),
		slog.Int("errors", report.Summary.ErrorCount),
	)
	if hookErr := engine.opts.EventHooks.OnRunComplete(report); hookErr != nil {
		logger.Warn("OnRunComplete hook returned an error", slog.String("error", hookErr.Error()))
	}
	return report, errs, nil
}

// ConvertStream transforms everything read from r and writes it to w. Unlike
// transform.NewReader it grows its source buffer as needed, so whitespace runs
// of any length can be trimmed. It returns the number of bytes written.
func ConvertStream(ctx context.Context, r io.Reader, w io.Writer, cfg Config) (written int64, err error) {
	t, err := NewTransformer(cfg)
	if err != nil {
		return 0, err
	}

	src := make([]byte, 0, streamChunk)
	dst := make([]byte, streamChunk)
	atEOF := false
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if !atEOF && len(src) < cap(src) {
			n, readErr := r.Read(src[len(src):cap(src)])
			src = src[:len(src)+n]
			if errors.Is(readErr, io.EOF) {
				atEOF = true
			} else if readErr != nil {
				return written, &IOError{Op: "read", Path: "-", Err: readErr}
			}
		}

		nDst, nSrc, tErr := t.Transform(dst, src, atEOF)
		if nDst > 0 {
			n, writeErr := w.Write(dst[:nDst])
			written += int64(n)
			if writeErr != nil {
				return written, &IOError{Op: "write", Path: "-", Err: writeErr}
			}
		}
		src = src[:copy(src, src[nSrc:])]

		switch {
		case tErr == nil:
			if atEOF {
				return written, nil
			}
		case errors.Is(tErr, transform.ErrShortDst):
		case errors.Is(tErr, transform.ErrShortSrc):
			if len(src) == cap(src) {
				src = slices.Grow(src, cap(src))
			}
		default:
			return written, fmt.Errorf("transform stream: %w", tErr)
		}
	}
}
