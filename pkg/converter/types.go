package converter

import "fmt"

// LineEndingMode selects how line terminators are rewritten.
type LineEndingMode string

// Constants representing the defined line-ending modes.
const (
	// LineEndingIgnore passes CR, LF, CRLF and bare CR through unchanged.
	LineEndingIgnore LineEndingMode = "ignore"
	// LineEndingLF collapses every CRLF pair to a bare LF. Bare CRs are kept.
	LineEndingLF LineEndingMode = "lf"
	// LineEndingCRLF inserts a CR before every LF not already preceded by one.
	LineEndingCRLF LineEndingMode = "crlf"
)

// DirectoryWalk defines how far a wildcard argument descends below its parent directory.
type DirectoryWalk string

// Constants representing the defined directory walk depths.
const (
	WalkOneLevel DirectoryWalk = "one-level"
	WalkNested   DirectoryWalk = "nested"
)

// Config is the immutable configuration of one transformation.
// DirectoryWalk is only consulted by the batch driver.
type Config struct {
	TabWidth               int
	LineEnding             LineEndingMode
	TrimTrailingWhitespace bool
	DirectoryWalk          DirectoryWalk
}

// DefaultConfig returns the configuration used when nothing is specified:
// tab width 4, line endings untouched, no trimming, no recursion.
func DefaultConfig() Config {
	return Config{
		TabWidth:      DefaultTabWidth,
		LineEnding:    LineEndingIgnore,
		DirectoryWalk: WalkOneLevel,
	}
}

// Validate reports ErrInvalidConfiguration for a tab width below one or an
// unknown line-ending mode. An empty DirectoryWalk is treated as WalkOneLevel.
func (c Config) Validate() error {
	if c.TabWidth < 1 {
		return fmt.Errorf("%w: tab width must be greater than zero, got %d", ErrInvalidConfiguration, c.TabWidth)
	}
	switch c.LineEnding {
	case LineEndingIgnore, LineEndingLF, LineEndingCRLF:
	default:
		return fmt.Errorf("%w: unknown line ending mode %q", ErrInvalidConfiguration, c.LineEnding)
	}
	switch c.DirectoryWalk {
	case "", WalkOneLevel, WalkNested:
	default:
		return fmt.Errorf("%w: unknown directory walk %q", ErrInvalidConfiguration, c.DirectoryWalk)
	}
	return nil
}

// Status defines the possible processing states of a file.
type Status string

// Constants representing the defined file processing statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusChanged    Status = "changed"
	StatusUnchanged  Status = "unchanged"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// IsFinal reports whether a file in this status will not change status again.
func (s Status) IsFinal() bool {
	switch s {
	case StatusChanged, StatusUnchanged, StatusSkipped, StatusFailed:
		return true
	}
	return false
}

// OutputFormat defines the format of the final run report.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatNone OutputFormat = "none"
)
