package converter

import (
	"log/slog"
	"time"

	"github.com/spf13/afero"
)

// Hooks defines callbacks for status updates during a conversion run.
// Implementations MUST be thread-safe as methods may be called concurrently.
type Hooks interface {
	OnFileDiscovered(path string) error
	OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error
	// OnRunComplete is called once, after the last argument of a run.
	OnRunComplete(report Report) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

// OnFileDiscovered implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileDiscovered(path string) error { return nil }

// OnFileStatusUpdate implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error {
	return nil
}

// OnRunComplete implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnRunComplete(report Report) error { return nil }

// FileFilter decides whether a file found by a wildcard walk may be rewritten.
// Files named literally on the command line are not passed through it.
type FileFilter interface {
	// Include receives the absolute, cleaned path of a regular file.
	Include(absPath string) (bool, error)
	// Reason is reported for every file Include rejects.
	Reason() string
}

// Options holds all configuration for a conversion run.
type Options struct {
	// --- Transformation ---
	TabWidth   int            `mapstructure:"width"`
	LineEnding LineEndingMode `mapstructure:"lineEnding"`
	Trim       bool           `mapstructure:"trim"`
	Recursive  bool           `mapstructure:"recursive"` // nested walk for wildcard arguments

	// --- Behavior & Control ---
	Concurrency  int          `mapstructure:"concurrency"` // files in flight per argument (0=auto)
	CheckOnly    bool         `mapstructure:"check"`       // report files that would change, write nothing
	OutputFormat OutputFormat `mapstructure:"outputFormat"`
	TuiEnabled   bool         `mapstructure:"tui"` // hint for the CLI (ignored if Verbose)
	Verbose      bool         `mapstructure:"verbose"`

	// --- File Handling & Filtering ---
	ExcludePatterns []string `mapstructure:"exclude"`
	SkipBinary      bool     `mapstructure:"skipBinary"`
	SkipVendor      bool     `mapstructure:"skipVendor"`
	GitTracked      bool     `mapstructure:"gitTracked"`

	// --- Reporting ---
	AppVersion     string `mapstructure:"-"`
	ConfigFilePath string `mapstructure:"-"`
	ProfileName    string `mapstructure:"-"`

	// --- Injected Dependencies ---
	EventHooks Hooks        `mapstructure:"-"` // defaults to NoOpHooks
	Logger     slog.Handler `mapstructure:"-"` // Required: Logging backend
	Fs         afero.Fs     `mapstructure:"-"` // defaults to afero.NewOsFs()
	FileFilter FileFilter   `mapstructure:"-"` // Optional: e.g. the git index filter
}

// DefaultOptions returns Options populated with the package defaults.
// Logger is left nil.
func DefaultOptions() Options {
	return Options{
		TabWidth:     DefaultTabWidth,
		LineEnding:   DefaultLineEnding,
		Trim:         DefaultTrim,
		Recursive:    DefaultRecursive,
		Concurrency:  DefaultConcurrency,
		CheckOnly:    DefaultCheckOnly,
		OutputFormat: DefaultOutputFormat,
		TuiEnabled:   DefaultTuiEnabled,
		Verbose:      DefaultVerbose,
		SkipBinary:   DefaultSkipBinary,
		SkipVendor:   DefaultSkipVendor,
		GitTracked:   DefaultGitTracked,
	}
}

// TransformConfig extracts the transducer configuration.
func (o Options) TransformConfig() Config {
	walk := WalkOneLevel
	if o.Recursive {
		walk = WalkNested
	}
	return Config{
		TabWidth:               o.TabWidth,
		LineEnding:             o.LineEnding,
		TrimTrailingWhitespace: o.Trim,
		DirectoryWalk:          walk,
	}
}
