// Package util holds the path pattern helpers shared by the walker and the CLI.
package util

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// HasWildcard reports whether a path component contains '*' or '?'.
func HasWildcard(name string) bool {
	return strings.ContainsAny(name, "*?")
}

// WildcardRegexp translates a file name pattern into an anchored regular
// expression: '*' matches any run of characters, '?' exactly one, and every
// other character matches itself. foldCase makes the match case-insensitive.
func WildcardRegexp(pattern string, foldCase bool) (*regexp.Regexp, error) {
	var b strings.Builder
	if foldCase {
		b.WriteString("(?i)")
	}
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return re, nil
}

// MatchesExclude checks if a slash-separated path, relative to the walk root,
// matches an exclude pattern. A pattern that is not rooted also matches any
// trailing run of path components, so "testdata" excludes "a/b/testdata".
// Note: This uses path.Match and does not implement '**'.
func MatchesExclude(pattern, relPath string, isRooted bool) bool {
	pattern = filepath.ToSlash(pattern)
	relPath = filepath.ToSlash(relPath)
	if pattern == "" || relPath == "" || relPath == "." {
		return false
	}
	if match, _ := path.Match(pattern, relPath); match {
		return true
	}
	if isRooted {
		return false
	}
	parts := strings.Split(relPath, "/")
	for i := 1; i < len(parts); i++ {
		if match, _ := path.Match(pattern, strings.Join(parts[i:], "/")); match {
			return true
		}
	}
	return false
}
