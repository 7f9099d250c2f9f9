package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/stackvity/tabs2spaces/pkg/converter/classify"
)

// Engine orchestrates the conversion of command-line arguments. Arguments are
// processed one at a time; the files of one argument are processed in parallel.
type Engine struct {
	opts        *Options
	logger      *slog.Logger
	walker      *Walker
	processor   *FileProcessor
	concurrency int
}

// NewEngine validates opts, fills in default dependencies and returns an Engine.
// Every error it returns wraps ErrInvalidConfiguration.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrInvalidConfiguration)
	}
	if err := opts.TransformConfig().Validate(); err != nil {
		return nil, err
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("%w: concurrency cannot be negative, got %d", ErrInvalidConfiguration, opts.Concurrency)
	}
	switch opts.OutputFormat {
	case "":
		opts.OutputFormat = OutputFormatText
	case OutputFormatText, OutputFormatJSON, OutputFormatNone:
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", ErrInvalidConfiguration, opts.OutputFormat)
	}
	if opts.EventHooks == nil {
		opts.EventHooks = &NoOpHooks{}
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	logger := slog.New(opts.Logger).With(slog.String("component", "engine"))

	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = runtime.NumCPU()
		opts.Concurrency = concurrency
		logger.Debug("Concurrency auto-detected", "count", concurrency)
	}

	classifier := classify.NewGoEnryClassifier()
	return &Engine{
		opts:        &opts,
		logger:      logger,
		walker:      NewWalker(&opts, classifier, opts.Logger),
		processor:   NewFileProcessor(&opts, classifier, opts.Logger),
		concurrency: concurrency,
	}, nil
}

// Run converts every file named by arg. The returned error joins all per-file
// errors, in path order; the report is complete either way.
func (e *Engine) Run(ctx context.Context, arg string) (Report, error) {
	startTime := time.Now()
	agg := newReportAggregator()
	e.logger.Debug("Processing argument", slog.String("argument", arg))

	files, skipped, err := e.walker.Resolve(ctx, arg)
	if err != nil {
		e.logger.Debug("Argument could not be resolved", slog.String("argument", arg), slog.Any("error", err))
		agg.addError(ErrorInfo{Argument: arg, Error: err.Error()}, err)
		return agg.getReport(e.opts, arg, startTime, 0)
	}
	for _, s := range skipped {
		agg.addSkipped(s)
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			e.processOne(ctx, arg, path, agg)
			return nil
		})
	}
	_ = g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		e.logger.Info("Processing run cancelled", slog.String("argument", arg), slog.String("reason", ctxErr.Error()))
		agg.addError(ErrorInfo{Argument: arg, Error: ctxErr.Error()}, ctxErr)
	}
	return agg.getReport(e.opts, arg, startTime, len(files)+len(skipped))
}

// processOne runs the processor on one file and records the result.
func (e *Engine) processOne(ctx context.Context, arg, path string, agg *reportAggregator) {
	defer func() {
		// Recover from panics within a worker to prevent crashing the whole run
		if r := recover(); r != nil {
			e.logger.Error("Panic recovered in worker", slog.String("path", path), slog.Any("panicValue", r))
			err := fmt.Errorf("panic while processing %s: %v", path, r)
			agg.addError(ErrorInfo{Argument: arg, Path: path, Error: err.Error()}, err)
		}
	}()

	result, _, err := e.processor.ProcessFile(ctx, path)
	switch r := result.(type) {
	case FileResult:
		agg.addProcessed(r)
	case SkippedInfo:
		agg.addSkipped(r)
	case ErrorInfo:
		r.Argument = arg
		agg.addError(r, err)
	default:
		e.logger.Warn("Aggregator received unknown result type", "type", fmt.Sprintf("%T", result))
	}
}

// --- reportAggregator ---

// reportAggregator manages the collection of results during one argument.
type reportAggregator struct {
	mu        sync.Mutex
	processed []FileResult
	skipped   []SkippedInfo
	failures  []failure
}

type failure struct {
	info ErrorInfo
	err  error
}

func newReportAggregator() *reportAggregator {
	return &reportAggregator{}
}

func (a *reportAggregator) addProcessed(info FileResult) {
	a.mu.Lock()
	a.processed = append(a.processed, info)
	a.mu.Unlock()
}

func (a *reportAggregator) addSkipped(info SkippedInfo) {
	a.mu.Lock()
	a.skipped = append(a.skipped, info)
	a.mu.Unlock()
}

func (a *reportAggregator) addError(info ErrorInfo, err error) {
	if err == nil {
		err = errors.New(info.Error)
	}
	a.mu.Lock()
	a.failures = append(a.failures, failure{info: info, err: err})
	a.mu.Unlock()
}

// getReport compiles the Report of one argument and the joined error.
func (a *reportAggregator) getReport(opts *Options, arg string, startTime time.Time, scanned int) (Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	failures := make([]failure, len(a.failures))
	copy(failures, a.failures)
	sort.SliceStable(failures, func(i, j int) bool { return failures[i].info.Path < failures[j].info.Path })

	report := Report{
		Summary: ReportSummary{
			Arguments:      []string{arg},
			ProfileUsed:    opts.ProfileName,
			ConfigFilePath: opts.ConfigFilePath,
			TabWidth:       opts.TabWidth,
			LineEnding:     opts.LineEnding,
			Trim:           opts.Trim,
			Recursive:      opts.Recursive,
			CheckOnly:      opts.CheckOnly,
			Concurrency:    opts.Concurrency,
			FilesScanned:   scanned,
			SkippedCount:   len(a.skipped),
			ErrorCount:     len(failures),
			Timestamp:      time.Now().UTC(),
			SchemaVersion:  ReportSchemaVersion,
		},
		Files:        append(make([]FileResult, 0, len(a.processed)), a.processed...),
		SkippedFiles: append(make([]SkippedInfo, 0, len(a.skipped)), a.skipped...),
		Errors:       make([]ErrorInfo, 0, len(failures)),
	}
	for _, f := range a.processed {
		if f.Status == StatusChanged {
			report.Summary.ChangedCount++
		} else {
			report.Summary.UnchangedCount++
		}
	}
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		report.Errors = append(report.Errors, f.info)
		errs = append(errs, f.err)
		if errors.Is(f.err, ErrChangeRequired) {
			report.Summary.ChangedCount++
		}
	}
	if len(errs) > 0 {
		report.Summary.FailedArguments = 1
	}
	report.sortEntries()
	report.Summary.DurationSeconds = time.Since(startTime).Seconds()
	return report, errors.Join(errs...)
}
