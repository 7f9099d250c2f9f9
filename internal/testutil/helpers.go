package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// CreateDummyFile creates a file with the given content on the real file
// system, ensuring parent directories exist.
func CreateDummyFile(t *testing.T, path string, content string) {
	t.Helper()
	fullPath := filepath.Clean(path)
	dir := filepath.Dir(fullPath)
	err := os.MkdirAll(dir, 0755)
	require.NoError(t, err, "Failed to create directory %s for dummy file", dir)
	err = os.WriteFile(fullPath, []byte(content), 0644)
	require.NoError(t, err, "Failed to write dummy file %s", fullPath)
}

// WriteFsFile creates a file on fsys with the given content and permission bits.
func WriteFsFile(t *testing.T, fsys afero.Fs, path, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), perm), "Failed to write %s", path)
	require.NoError(t, fsys.Chmod(path, perm))
}

// ReadFsFile returns the content of path on fsys.
func ReadFsFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err, "Failed to read %s", path)
	return string(data)
}

// DiscardLogger returns a handler that drops every record.
func DiscardLogger() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}

// FaultyFs wraps an afero.Fs, counts write activity and injects failures.
type FaultyFs struct {
	afero.Fs
	CreateErr error // returned by OpenFile with O_CREATE
	RenameErr error // returned by Rename

	Creates atomic.Int32
	Renames atomic.Int32
}

// OpenFile implements afero.Fs.
func (f *FaultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 {
		f.Creates.Add(1)
		if f.CreateErr != nil {
			return nil, f.CreateErr
		}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

// Rename implements afero.Fs.
func (f *FaultyFs) Rename(oldname, newname string) error {
	f.Renames.Add(1)
	if f.RenameErr != nil {
		return f.RenameErr
	}
	return f.Fs.Rename(oldname, newname)
}
