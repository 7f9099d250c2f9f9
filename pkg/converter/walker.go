package converter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/stackvity/tabs2spaces/pkg/converter/classify"
	"github.com/stackvity/tabs2spaces/pkg/util"
)

// Walker resolves one command-line argument into the files to process.
// A final path component without wildcards names exactly one file; otherwise
// the component is matched against regular files below its parent directory.
type Walker struct {
	fs            afero.Fs
	walk          DirectoryWalk
	hooks         Hooks
	logger        *slog.Logger
	excludes      *excludeMatcher
	classifier    classify.Classifier
	skipVendor    bool
	filter        FileFilter
	foldCaseNames bool
}

// NewWalker creates a new Walker from fully defaulted options.
func NewWalker(opts *Options, classifier classify.Classifier, loggerHandler slog.Handler) *Walker {
	logger := slog.New(loggerHandler).With(slog.String("component", "walker"))
	excludes := newExcludeMatcher(opts.ExcludePatterns)
	logger.Debug("Exclude patterns loaded", slog.Int("count", excludes.patternCount()))
	return &Walker{
		fs:            opts.Fs,
		walk:          opts.TransformConfig().DirectoryWalk,
		hooks:         opts.EventHooks,
		logger:        logger,
		excludes:      excludes,
		classifier:    classifier,
		skipVendor:    opts.SkipVendor,
		filter:        opts.FileFilter,
		foldCaseNames: runtime.GOOS == "windows",
	}
}

// Resolve returns the files named by arg in lexical order, together with the
// files a filter rejected. Files named literally are returned as given, even
// if they do not exist; the processor reports that.
func (w *Walker) Resolve(ctx context.Context, arg string) (files []string, skipped []SkippedInfo, err error) {
	dir, name := filepath.Split(arg)
	if !util.HasWildcard(name) {
		w.discovered(arg)
		return []string{arg}, nil, nil
	}
	if dir == "" {
		dir = "."
	}
	dir = filepath.Clean(dir)

	re, err := util.WildcardRegexp(name, w.foldCaseNames)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrPattern, err)
	}

	w.logger.Debug("Resolving wildcard", slog.String("dir", dir), slog.String("pattern", name), slog.String("walk", string(w.walk)))
	collect := func(path, relPath string, info fs.FileInfo) {
		if !info.Mode().IsRegular() || !re.MatchString(info.Name()) {
			return
		}
		if reason, details := w.rejects(path, relPath); reason != "" {
			w.logger.Debug("File skipped", slog.String("path", path), slog.String("reason", reason), slog.String("details", details))
			skipped = append(skipped, SkippedInfo{Path: path, Reason: reason, Details: details})
			w.status(path, StatusSkipped, details)
			return
		}
		w.discovered(path)
		files = append(files, path)
	}

	if w.walk == WalkNested {
		err = w.walkNested(ctx, dir, collect)
	} else {
		err = w.walkOneLevel(ctx, dir, collect)
	}
	if err != nil {
		return nil, nil, err
	}

	sort.Strings(files)
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Path < skipped[j].Path })
	w.logger.Debug("Wildcard resolved", slog.String("argument", arg), slog.Int("files", len(files)), slog.Int("skipped", len(skipped)))
	return files, skipped, nil
}

func (w *Walker) walkOneLevel(ctx context.Context, dir string, collect func(path, relPath string, info fs.FileInfo)) error {
	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return &IOError{Op: "readdir", Path: dir, Err: err}
	}
	for _, info := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		collect(filepath.Join(dir, info.Name()), info.Name(), info)
	}
	return nil
}

// walkNested visits every descendant of dir. Unreadable subdirectories are
// logged and skipped; only a failure on dir itself fails the argument.
func (w *Walker) walkNested(ctx context.Context, dir string, collect func(path, relPath string, info fs.FileInfo)) error {
	err := afero.Walk(w.fs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if path == dir {
				return &IOError{Op: "walk", Path: path, Err: err}
			}
			w.logger.Warn("Error accessing path during walk", slog.String("path", path), slog.String("error", err.Error()))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		relPath, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			w.logger.Warn("Could not calculate relative path", slog.String("path", path), slog.String("error", relErr.Error()))
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil // Skip root
		}
		if info.IsDir() {
			if pattern := w.excludes.match(relPath, true); pattern != "" {
				w.logger.Debug("Directory excluded", slog.String("path", path), slog.String("pattern", pattern))
				return filepath.SkipDir
			}
			if w.skipVendor && w.classifier.IsVendored(relPath, true) {
				w.logger.Debug("Vendored directory skipped", slog.String("path", path))
				return filepath.SkipDir
			}
			return nil
		}
		collect(path, relPath, info)
		return nil
	})
	var ioErr *IOError
	if err != nil && !errors.As(err, &ioErr) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return &IOError{Op: "walk", Path: dir, Err: err}
	}
	return err
}

// rejects applies the path filters to a wildcard match and returns the skip
// reason, or "" if the file is to be processed.
func (w *Walker) rejects(path, relPath string) (reason, details string) {
	if pattern := w.excludes.match(relPath, false); pattern != "" {
		return SkipReasonExcluded, fmt.Sprintf("Matched exclude pattern: %s", pattern)
	}
	if w.skipVendor && w.classifier.IsVendored(relPath, false) {
		return SkipReasonVendor, "Vendored path"
	}
	if w.filter != nil {
		absPath, err := filepath.Abs(path)
		if err != nil {
			w.logger.Warn("Could not get absolute path", slog.String("path", path), slog.String("error", err.Error()))
			return "", ""
		}
		include, err := w.filter.Include(absPath)
		if err != nil {
			w.logger.Warn("File filter failed, keeping file", slog.String("path", path), slog.String("error", err.Error()))
			return "", ""
		}
		if !include {
			return w.filter.Reason(), "Rejected by file filter"
		}
	}
	return "", ""
}

func (w *Walker) discovered(path string) {
	if hookErr := w.hooks.OnFileDiscovered(path); hookErr != nil {
		w.logger.Warn("Event hook OnFileDiscovered failed", slog.String("path", path), slog.String("error", hookErr.Error()))
	}
}

func (w *Walker) status(path string, status Status, message string) {
	if hookErr := w.hooks.OnFileStatusUpdate(path, status, message, 0); hookErr != nil {
		w.logger.Warn("Event hook OnFileStatusUpdate failed", slog.String("path", path), slog.String("error", hookErr.Error()))
	}
}

// --- excludeMatcher ---

// excludeMatcher applies gitignore-like patterns to paths relative to the walk
// root. The last matching pattern wins; a leading '!' re-includes.
type excludeMatcher struct {
	patterns []excludePattern
}

type excludePattern struct {
	pattern     string // cleaned pattern using '/' separators
	origPattern string // as given, for reporting
	negated     bool
	isDirOnly   bool
	isRooted    bool
}

func newExcludeMatcher(rawPatterns []string) *excludeMatcher {
	m := &excludeMatcher{}
	for _, raw := range rawPatterns {
		p := excludePattern{origPattern: raw}
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "!") {
			p.negated = true
			trimmed = strings.TrimSpace(trimmed[1:])
		}
		if strings.HasPrefix(trimmed, "/") {
			p.isRooted = true
			trimmed = strings.TrimPrefix(trimmed, "/")
		}
		if strings.HasSuffix(trimmed, "/") {
			p.isDirOnly = true
			trimmed = strings.TrimSuffix(trimmed, "/")
		}
		p.pattern = filepath.ToSlash(trimmed)
		if p.pattern == "" {
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// match returns the original pattern that excludes relPath, or "".
func (m *excludeMatcher) match(relPath string, isDir bool) string {
	excludedBy := ""
	for _, p := range m.patterns {
		if p.isDirOnly && !isDir {
			continue
		}
		if util.MatchesExclude(p.pattern, relPath, p.isRooted) {
			if p.negated {
				excludedBy = ""
			} else {
				excludedBy = p.origPattern
			}
		}
	}
	return excludedBy
}

func (m *excludeMatcher) patternCount() int {
	return len(m.patterns)
}
