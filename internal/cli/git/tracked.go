// Package git provides the --git-tracked file filter, backed by go-git.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"

	"github.com/stackvity/tabs2spaces/pkg/converter"
)

// ErrGitOperation indicates that a repository or its index could not be read.
var ErrGitOperation = errors.New("git operation failed")

// Errorf returns a formatted error that wraps ErrGitOperation.
func Errorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrGitOperation}, args...)...)
}

// repoIndex is the set of paths recorded in one repository's index.
type repoIndex struct {
	root    string              // absolute worktree root
	tracked map[string]struct{} // slash-separated, relative to root
}

// TrackedFilter accepts only files recorded in the index of the git
// repository containing them. Files outside any repository are rejected.
// Repositories and their indexes are loaded once per filter.
type TrackedFilter struct {
	logger *slog.Logger

	mu     sync.Mutex
	byDir  map[string]*repoIndex // nil value: not inside a repository
	byRoot map[string]*repoIndex
}

var _ converter.FileFilter = (*TrackedFilter)(nil)

// NewTrackedFilter creates an empty filter.
func NewTrackedFilter(loggerHandler slog.Handler) *TrackedFilter {
	logger := slog.New(loggerHandler).With(slog.String("component", "gitFilter"), slog.String("backend", "go-git"))
	return &TrackedFilter{
		logger: logger,
		byDir:  make(map[string]*repoIndex),
		byRoot: make(map[string]*repoIndex),
	}
}

// Reason implements converter.FileFilter.
func (f *TrackedFilter) Reason() string { return converter.SkipReasonUntracked }

// Include implements converter.FileFilter.
func (f *TrackedFilter) Include(absPath string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx, err := f.indexFor(filepath.Dir(absPath))
	if err != nil {
		return false, err
	}
	if idx == nil {
		f.logger.Debug("File is not inside a git repository", slog.String("path", absPath))
		return false, nil
	}
	rel, err := filepath.Rel(idx.root, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false, nil
	}
	_, ok := idx.tracked[filepath.ToSlash(rel)]
	return ok, nil
}

// indexFor returns the index of the repository containing dir. The caller holds f.mu.
func (f *TrackedFilter) indexFor(dir string) (*repoIndex, error) {
	if idx, ok := f.byDir[dir]; ok {
		return idx, nil
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		f.byDir[dir] = nil
		return nil, nil
	}
	if err != nil {
		return nil, Errorf("failed to open repository at or above '%s': %w", dir, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no checked-out files to rewrite.
		f.byDir[dir] = nil
		return nil, nil
	}
	root := worktree.Filesystem.Root()
	if idx, ok := f.byRoot[root]; ok {
		f.byDir[dir] = idx
		return idx, nil
	}

	index, err := repo.Storer.Index()
	if err != nil {
		return nil, Errorf("failed to read index of repository '%s': %w", root, err)
	}
	idx := &repoIndex{root: root, tracked: make(map[string]struct{}, len(index.Entries))}
	for _, entry := range index.Entries {
		idx.tracked[entry.Name] = struct{}{}
	}
	f.logger.Debug("Loaded git index", slog.String("root", root), slog.Int("entries", len(idx.tracked)))
	f.byRoot[root] = idx
	f.byDir[dir] = idx
	return idx, nil
}
