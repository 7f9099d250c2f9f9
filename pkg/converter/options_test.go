package converter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stackvity/tabs2spaces/pkg/converter"
)

// TestNoOpHooks verifies that the NoOpHooks implementation runs without panicking.
func TestNoOpHooks(t *testing.T) {
	hooks := &converter.NoOpHooks{}
	assert.NotPanics(t, func() {
		assert.NoError(t, hooks.OnFileDiscovered("a.go"))
		assert.NoError(t, hooks.OnFileStatusUpdate("a.go", converter.StatusChanged, "", 0))
		assert.NoError(t, hooks.OnRunComplete(converter.Report{}))
	})
}

func TestDefaultOptions(t *testing.T) {
	opts := converter.DefaultOptions()
	assert.Equal(t, converter.DefaultTabWidth, opts.TabWidth)
	assert.Equal(t, converter.LineEndingIgnore, opts.LineEnding)
	assert.False(t, opts.Trim)
	assert.False(t, opts.Recursive)
	assert.Equal(t, 0, opts.Concurrency)
	assert.Equal(t, converter.OutputFormatText, opts.OutputFormat)
	assert.Nil(t, opts.Logger)
	assert.Equal(t, converter.DefaultConfig(), opts.TransformConfig())
}

func TestOptionsTransformConfig(t *testing.T) {
	opts := converter.DefaultOptions()
	opts.TabWidth = 2
	opts.LineEnding = converter.LineEndingCRLF
	opts.Trim = true
	opts.Recursive = true

	assert.Equal(t, converter.Config{
		TabWidth:               2,
		LineEnding:             converter.LineEndingCRLF,
		TrimTrailingWhitespace: true,
		DirectoryWalk:          converter.WalkNested,
	}, opts.TransformConfig())
}
