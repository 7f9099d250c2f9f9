package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"fortio.org/safecast"
	"github.com/spf13/afero"

	"github.com/stackvity/tabs2spaces/pkg/converter/classify"
)

var errNotRegular = errors.New("not a regular file")

// FileProcessor handles the load, transform, compare and replace pipeline for a single file.
type FileProcessor struct {
	fs         afero.Fs
	cfg        Config
	checkOnly  bool
	skipBinary bool
	classifier classify.Classifier
	hooks      Hooks
	logger     *slog.Logger
}

// NewFileProcessor creates a new FileProcessor from fully defaulted options.
func NewFileProcessor(opts *Options, classifier classify.Classifier, loggerHandler slog.Handler) *FileProcessor {
	return &FileProcessor{
		fs:         opts.Fs,
		cfg:        opts.TransformConfig(),
		checkOnly:  opts.CheckOnly,
		skipBinary: opts.SkipBinary,
		classifier: classifier,
		hooks:      opts.EventHooks,
		logger:     slog.New(loggerHandler).With(slog.String("component", "processor")),
	}
}

// ProcessFile runs the pipeline for path. result is a FileResult, a SkippedInfo
// or, when err is non-nil, an ErrorInfo.
func (p *FileProcessor) ProcessFile(ctx context.Context, path string) (result any, status Status, err error) {
	startTime := time.Now()
	logArgs := []any{slog.String("path", path)}

	defer func() {
		duration := time.Since(startTime)
		message := ""
		if err != nil {
			status = StatusFailed
			result = ErrorInfo{Path: path, Error: err.Error()}
			message = err.Error()
		}
		logLevel := slog.LevelDebug
		if status == StatusFailed {
			logLevel = slog.LevelError
			if errors.Is(err, ErrChangeRequired) {
				logLevel = slog.LevelWarn
			}
		}
		p.logger.Log(ctx, logLevel, "Processor finished file task",
			append(logArgs, slog.String("status", string(status)), slog.Duration("duration", duration), slog.String("message", message))...)
		if hookErr := p.hooks.OnFileStatusUpdate(path, status, message, duration); hookErr != nil {
			p.logger.Warn("Event hook OnFileStatusUpdate failed", append(logArgs, slog.String("error", hookErr.Error()))...)
		}
	}()

	if err = ctx.Err(); err != nil {
		return nil, StatusFailed, err
	}
	if hookErr := p.hooks.OnFileStatusUpdate(path, StatusProcessing, "", 0); hookErr != nil {
		p.logger.Warn("Event hook OnFileStatusUpdate failed", append(logArgs, slog.String("error", hookErr.Error()))...)
	}

	info, statErr := p.fs.Stat(path)
	if statErr != nil {
		return nil, StatusFailed, &IOError{Op: "stat", Path: path, Err: statErr}
	}
	if !info.Mode().IsRegular() {
		return nil, StatusFailed, &IOError{Op: "stat", Path: path, Err: errNotRegular}
	}
	if _, convErr := safecast.Conv[int](info.Size()); convErr != nil {
		return nil, StatusFailed, fmt.Errorf("%w: %s is %d bytes: %w", ErrOutputTooLarge, path, info.Size(), convErr)
	}

	content, readErr := afero.ReadFile(p.fs, path)
	if readErr != nil {
		return nil, StatusFailed, &IOError{Op: "read", Path: path, Err: readErr}
	}
	fileResult := FileResult{Path: path, SizeBytes: int64(len(content))}

	if p.skipBinary && p.classifier.IsBinary(content) {
		p.logger.Debug("Binary file skipped", logArgs...)
		return SkippedInfo{Path: path, Reason: SkipReasonBinary, Details: "Binary content detected"}, StatusSkipped, nil
	}

	converted, err := Transform(content, p.cfg)
	if err != nil {
		return nil, StatusFailed, fmt.Errorf("transform %s: %w", path, err)
	}
	fileResult.OutputBytes = int64(len(converted))
	fileResult.DurationMs = time.Since(startTime).Milliseconds()

	if bytes.Equal(content, converted) {
		fileResult.Status = StatusUnchanged
		return fileResult, StatusUnchanged, nil
	}
	if p.checkOnly {
		return nil, StatusFailed, fmt.Errorf("%w: %s", ErrChangeRequired, path)
	}

	if err = writeFileAtomic(p.fs, path, converted, info.Mode().Perm()); err != nil {
		return nil, StatusFailed, err
	}
	fileResult.Status = StatusChanged
	fileResult.DurationMs = time.Since(startTime).Milliseconds()
	return fileResult, StatusChanged, nil
}

// writeFileAtomic writes data to a sibling temp file with the given permission
// bits and renames it over path. The temp file is removed if any step fails.
func writeFileAtomic(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	tmp := path + TempFileSuffix
	f, err := fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return &IOError{Op: "create", Path: tmp, Err: err}
	}
	discard := func() {
		_ = f.Close()
		_ = fsys.Remove(tmp)
	}

	// OpenFile applies the umask; match the original bits exactly.
	if err := fsys.Chmod(tmp, perm); err != nil {
		discard()
		return &IOError{Op: "chmod", Path: tmp, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		discard()
		return &IOError{Op: "write", Path: tmp, Err: err}
	}
	if err := f.Sync(); err != nil {
		discard()
		return &IOError{Op: "sync", Path: tmp, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(tmp)
		return &IOError{Op: "close", Path: tmp, Err: err}
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return &IOError{Op: "rename", Path: tmp, Dest: path, Err: err}
	}
	return nil
}
