package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// --- Exported Error Variables ---
// These errors represent specific categories of issues returned by Transform,
// ConvertPath and ConvertStream. Library users can check against them using errors.Is.

var (
	// ErrInvalidConfiguration indicates a Config that cannot be used, such as a tab
	// width below one. It is raised before any byte is processed.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrIOFailure indicates that a file could not be read, written or renamed.
	// Errors of this kind are usually an *IOError carrying the paths involved.
	ErrIOFailure = errors.New("i/o failure")

	// ErrPattern indicates a wildcard argument that could not be compiled into a matcher.
	ErrPattern = errors.New("invalid wildcard pattern")

	// ErrOutputTooLarge indicates that the output bound of an input does not fit in an int.
	ErrOutputTooLarge = errors.New("output size exceeds addressable memory")

	// ErrEstimateExceeded indicates that the transducer ran out of the capacity computed
	// by EstimateOutputSize, which indicates a bug in the estimator.
	ErrEstimateExceeded = errors.New("output size estimate exceeded")

	// ErrChangeRequired is reported in check mode for every file whose content
	// would be rewritten.
	ErrChangeRequired = errors.New("file requires conversion")
)

// IOError is returned when a file system operation fails.
type IOError struct {
	// Op is the operation that failed, for example "stat", "read", "readdir",
	// "create", "write", "sync" or "rename".
	Op string
	// Path is the file the operation was applied to (the source for a rename).
	Path string
	// Dest is the rename destination. Empty for other operations.
	Dest string
	// Err is the underlying error.
	Err error
}

func (e *IOError) Error() string {
	if e.Dest != "" {
		return fmt.Sprintf("%s %s -> %s: %v", e.Op, e.Path, e.Dest, e.reason())
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.reason())
}

// reason drops the op and path that *fs.PathError and *os.LinkError repeat.
func (e *IOError) reason() error {
	switch err := e.Err.(type) {
	case *fs.PathError:
		return err.Err
	case *os.LinkError:
		return err.Err
	}
	return e.Err
}

// Unwrap exposes both ErrIOFailure and the underlying cause to errors.Is and errors.As.
func (e *IOError) Unwrap() []error {
	return []error{ErrIOFailure, e.Err}
}
