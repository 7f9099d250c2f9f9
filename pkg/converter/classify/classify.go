// Package classify decides which discovered files should be left alone:
// binary content and vendored third-party trees.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Classifier defines the checks the walker and processor apply before a file is rewritten.
//
// Implementations must be safe for concurrent use.
type Classifier interface {
	// IsBinary reports whether content looks like binary data.
	IsBinary(content []byte) bool
	// IsVendored reports whether a slash-separated path, relative to the walk
	// root, lies in a vendored tree (vendor/, node_modules/, third_party/ ...).
	IsVendored(relPath string, isDir bool) bool
}

// goEnryClassifier implements Classifier using the go-enry heuristics.
type goEnryClassifier struct{}

// NewGoEnryClassifier returns the default Classifier.
func NewGoEnryClassifier() Classifier {
	return goEnryClassifier{}
}

// IsBinary implements Classifier. Empty content is text.
func (goEnryClassifier) IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	return enry.IsBinary(content)
}

// IsVendored implements Classifier. Directories are checked with a trailing
// slash, which is how go-enry's vendor rules are written.
func (goEnryClassifier) IsVendored(relPath string, isDir bool) bool {
	p := filepath.ToSlash(relPath)
	if p == "" || p == "." {
		return false
	}
	if isDir && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return enry.IsVendor(p)
}
