package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/tabs2spaces/internal/testutil"
	"github.com/stackvity/tabs2spaces/pkg/converter"
)

// setupTestGitRepo creates a repository with README.md and src/main.c staged
// and src/new.c left untracked.
func setupTestGitRepo(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	testutil.CreateDummyFile(t, filepath.Join(root, "README.md"), "# hi\n")
	testutil.CreateDummyFile(t, filepath.Join(root, "src", "main.c"), "int\tmain;\n")
	testutil.CreateDummyFile(t, filepath.Join(root, "src", "new.c"), "int\tnew;\n")

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add("README.md")
	require.NoError(t, err)
	_, err = worktree.Add("src/main.c")
	require.NoError(t, err)
	return root
}

func TestTrackedFilter_Include(t *testing.T) {
	root := setupTestGitRepo(t)
	f := NewTrackedFilter(testutil.DiscardLogger())

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "README.md"), true},
		{filepath.Join(root, "src", "main.c"), true},
		{filepath.Join(root, "src", "new.c"), false},
		{filepath.Join(root, "src", "missing.c"), false},
	}
	for _, tt := range tests {
		got, err := f.Include(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
	assert.Len(t, f.byRoot, 1, "the index is loaded once per repository")
	assert.Equal(t, converter.SkipReasonUntracked, f.Reason())
}

func TestTrackedFilter_OutsideRepository(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(dir, "loose.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	f := NewTrackedFilter(testutil.DiscardLogger())
	got, err := f.Include(path)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestErrorf(t *testing.T) {
	err := Errorf("reading %s", "index")
	assert.ErrorIs(t, err, ErrGitOperation)
	assert.Equal(t, "git operation failed: reading index", err.Error())
}
