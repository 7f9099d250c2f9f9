package converter

// Constants defining default values for configuration options.
// These are used when setting up Viper defaults in the configuration loading process.
const (
	// DefaultTabWidth is the tab stop distance in columns.
	DefaultTabWidth = 4
	// DefaultLineEnding leaves line terminators untouched.
	DefaultLineEnding = LineEndingIgnore
	// DefaultTrim is the default state of trailing whitespace trimming.
	DefaultTrim = false
	// DefaultRecursive is the default state of nested directory walks.
	DefaultRecursive = false
	// DefaultConcurrency determines the default number of workers. 0 means runtime.NumCPU().
	DefaultConcurrency = 0
	// DefaultCheckOnly is the default state of check (dry-run) mode.
	DefaultCheckOnly = false
	// DefaultSkipBinary is the default state of binary file skipping.
	DefaultSkipBinary = false
	// DefaultSkipVendor is the default state of vendored path skipping.
	DefaultSkipVendor = false
	// DefaultGitTracked is the default state of the git index filter.
	DefaultGitTracked = false
	// DefaultOutputFormat is the default format for the final summary report.
	DefaultOutputFormat = OutputFormatText
	// DefaultTuiEnabled is the default state for the Terminal UI.
	DefaultTuiEnabled = false
	// DefaultVerbose is the default state for verbose logging.
	DefaultVerbose = false
)

// TempFileSuffix is appended to a file name to form the sibling written before the atomic rename.
const TempFileSuffix = ".tabs2spaces.tmp"

// ReportSchemaVersion indicates the version of the JSON report structure.
const ReportSchemaVersion = "1.0"

// Constants defining skip reasons used in the Report.
const (
	SkipReasonBinary    = "binary_file"
	SkipReasonVendor    = "vendored_path"
	SkipReasonExcluded  = "excluded_pattern"
	SkipReasonUntracked = "untracked_file"
)
