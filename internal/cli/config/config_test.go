package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/tabs2spaces/pkg/converter"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), "tabs2spaces.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	return filePath
}

// load parses args with a fresh flag set, running from an empty directory so
// no stray configuration file is picked up.
func load(t *testing.T, args ...string) (converter.Options, *bytes.Buffer, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))

	var logs bytes.Buffer
	opts, logger, err := LoadAndValidate("1.2.3", flags, &logs)
	require.NotNil(t, logger)
	return opts, &logs, err
}

func TestLoadAndValidate_Defaults(t *testing.T) {
	opts, _, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, converter.DefaultTabWidth, opts.TabWidth)
	assert.Equal(t, converter.LineEndingIgnore, opts.LineEnding)
	assert.False(t, opts.Trim)
	assert.False(t, opts.Recursive)
	assert.Equal(t, converter.OutputFormatText, opts.OutputFormat)
	assert.Empty(t, opts.ExcludePatterns)
	assert.Equal(t, "1.2.3", opts.AppVersion)
	assert.Empty(t, opts.ConfigFilePath)
	assert.NotNil(t, opts.Logger)
}

func TestLoadAndValidate_Flags(t *testing.T) {
	opts, _, err := load(t,
		"-w", "8", "--crlf", "--trim", "--rec", "--check",
		"--exclude", "vendor/", "--exclude", "*.min.js",
		"--skip-binary", "--concurrency", "3", "--output-format", "json",
	)
	require.NoError(t, err)

	assert.Equal(t, 8, opts.TabWidth)
	assert.Equal(t, converter.LineEndingCRLF, opts.LineEnding)
	assert.True(t, opts.Trim)
	assert.True(t, opts.Recursive)
	assert.True(t, opts.CheckOnly)
	assert.Equal(t, []string{"vendor/", "*.min.js"}, opts.ExcludePatterns)
	assert.True(t, opts.SkipBinary)
	assert.Equal(t, 3, opts.Concurrency)
	assert.Equal(t, converter.OutputFormatJSON, opts.OutputFormat)
}

func TestLoadAndValidate_LineEndingFlagsConflict(t *testing.T) {
	_, _, err := load(t, "--lf", "--crlf")
	require.Error(t, err)
	assert.ErrorIs(t, err, converter.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoadAndValidate_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero width", []string{"--width", "0"}},
		{"negative width", []string{"--width=-3"}},
		{"negative concurrency", []string{"--concurrency=-1"}},
		{"unknown output format", []string{"--output-format", "xml"}},
		{"empty exclude", []string{"--exclude", "!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, logs, err := load(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, converter.ErrInvalidConfiguration)
			assert.Contains(t, logs.String(), "level=ERROR")
		})
	}
}

func TestLoadAndValidate_ConfigFileAndProfile(t *testing.T) {
	cfg := createTempConfigFile(t, `
width: 2
lineEnding: lf
trim: true
exclude:
  - "*.gen.go"
profiles:
  wide:
    width: 8
    recursive: true
`)

	opts, _, err := load(t, "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, opts.TabWidth)
	assert.Equal(t, converter.LineEndingLF, opts.LineEnding)
	assert.True(t, opts.Trim)
	assert.False(t, opts.Recursive)
	assert.Equal(t, []string{"*.gen.go"}, opts.ExcludePatterns)
	assert.Equal(t, cfg, opts.ConfigFilePath)

	opts, _, err = load(t, "--config", cfg, "--profile", "wide")
	require.NoError(t, err)
	assert.Equal(t, 8, opts.TabWidth)
	assert.True(t, opts.Recursive)
	assert.True(t, opts.Trim, "profile settings merge over the file")
	assert.Equal(t, "wide", opts.ProfileName)

	// Flags beat the file; the off switches beat everything.
	opts, _, err = load(t, "--config", cfg, "--profile", "wide", "-w", "3", "--notrim", "--norec")
	require.NoError(t, err)
	assert.Equal(t, 3, opts.TabWidth)
	assert.False(t, opts.Trim)
	assert.False(t, opts.Recursive)
}

func TestLoadAndValidate_ConfigErrors(t *testing.T) {
	_, _, err := load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, converter.ErrInvalidConfiguration)

	cfg := createTempConfigFile(t, "width: 2\n")
	_, _, err = load(t, "--config", cfg, "--profile", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, converter.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), `profile "nope" not found`)

	cfg = createTempConfigFile(t, "lineEnding: mac\n")
	_, _, err = load(t, "--config", cfg)
	assert.ErrorIs(t, err, converter.ErrInvalidConfiguration)
}

func TestLoadAndValidate_Environment(t *testing.T) {
	t.Setenv("TABS2SPACES_WIDTH", "6")
	t.Setenv("TABS2SPACES_LINEENDING", "crlf")
	opts, _, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, 6, opts.TabWidth)
	assert.Equal(t, converter.LineEndingCRLF, opts.LineEnding)

	opts, _, err = load(t, "--width", "5", "--lf")
	require.NoError(t, err)
	assert.Equal(t, 5, opts.TabWidth, "flags beat the environment")
	assert.Equal(t, converter.LineEndingLF, opts.LineEnding)
}

func TestLoadAndValidate_VerboseDisablesTUI(t *testing.T) {
	opts, logs, err := load(t, "--tui", "--verbose")
	require.NoError(t, err)
	assert.True(t, opts.Verbose)
	assert.False(t, opts.TuiEnabled)
	assert.Contains(t, logs.String(), "level=DEBUG")

	opts, _, err = load(t, "--tui")
	require.NoError(t, err)
	assert.True(t, opts.TuiEnabled)
}
