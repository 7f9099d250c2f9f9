package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/tabs2spaces/internal/cli"
)

type result struct {
	stdout, stderr string
	code           int
	err            error
}

// execute runs a fresh root command in an isolated working and home
// directory so no configuration file is picked up.
func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	code := 0
	cmd := newRootCmd(cli.Streams{In: strings.NewReader(stdin), Out: &stdout, Err: &stderr}, &code)
	cmd.SetArgs(normalizeArgs(args))
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code, err: err}
}

func TestRootCmd_NoArgumentsPrintsUsage(t *testing.T) {
	res := execute(t, "")
	require.NoError(t, res.err)
	assert.Zero(t, res.code)
	assert.Contains(t, res.stdout, "Usage:")
	assert.Contains(t, res.stdout, "tabs2spaces [flags] <path|pattern|->...")
}

func TestRootCmd_HelpListsAllFlags(t *testing.T) {
	res := execute(t, "", "--help")
	require.NoError(t, res.err)
	assert.Empty(t, res.stderr)

	var code int
	cmd := newRootCmd(cli.Streams{}, &code)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		assert.Contains(t, res.stdout, "--"+f.Name, "help should list --%s", f.Name)
		if f.Shorthand != "" {
			assert.Contains(t, res.stdout, "-"+f.Shorthand+",", "help should list -%s", f.Shorthand)
		}
	})
}

func TestRootCmd_Version(t *testing.T) {
	res := execute(t, "", "--version")
	require.NoError(t, res.err)
	assert.Equal(t, "tabs2spaces version dev (commit: none, built: unknown)\n", res.stdout)
}

func TestRootCmd_FlagErrors(t *testing.T) {
	res := execute(t, "", "--unknown-flag", "a.txt")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "unknown flag: --unknown-flag")

	res = execute(t, "", "-w:x", "a.txt")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, `invalid argument "x"`)
}

func TestRootCmd_InvalidConfiguration(t *testing.T) {
	res := execute(t, "", "--lf", "--crlf", "a.txt")
	require.Error(t, res.err)
	assert.NotContains(t, res.stderr, "Error:", "configuration errors are only logged once")
	assert.Contains(t, res.stderr, "level=ERROR")
	assert.NotContains(t, res.stderr, "Usage:")
}

func TestRootCmd_ConvertsFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("\tx \r\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("y\n"), 0644))

	res := execute(t, "", "-w:2", "--lf", "--trim", "--output-format=none", filepath.Join(dir, "*.txt"), filepath.Join(dir, "missing.txt"))
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.code, "one argument failed")
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "Argument failed")

	got, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "  x\n", string(got))
	got, err = os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, "y\n", string(got))
}

func TestRootCmd_FlagsApplyToEveryPath(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("\ta\r\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("\tb\r\n"), 0644))

	// Flag position does not matter: --lf and -w:2 also apply to a.txt.
	res := execute(t, "", "--output-format=none", a, "--lf", "-w:2", b)
	require.NoError(t, res.err)
	assert.Zero(t, res.code)

	for path, want := range map[string]string{a: "  a\n", b: "  b\n"} {
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), path)
	}
}

func TestRootCmd_Stdin(t *testing.T) {
	res := execute(t, "a\tb\n", "--width=8", "-")
	require.NoError(t, res.err)
	assert.Zero(t, res.code)
	assert.Equal(t, "a       b\n", res.stdout)
}

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"legacy width", []string{"-w:8", "a.c"}, []string{"--width=8", "a.c"}},
		{"other flags untouched", []string{"-w", "2", "--lf", "-"}, []string{"-w", "2", "--lf", "-"}},
		{"paths after terminator", []string{"--trim", "--", "-w:3"}, []string{"--trim", "--", "-w:3"}},
		{"empty", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArgs(tt.in))
		})
	}
}
