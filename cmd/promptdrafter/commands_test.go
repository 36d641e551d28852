package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "promptdrafter version "), out)
}

func TestTextCommands(t *testing.T) {
	out, err := run(t, "", "extract", "a {wildcard_b} {wildcard_a}", "{wildcard_b}")
	require.NoError(t, err)
	assert.Equal(t, "wildcard_b\nwildcard_a\n", out)

	out, err = run(t, "x {wildcard_1} {wildcard_04}", "extract")
	require.NoError(t, err)
	assert.Equal(t, "wildcard_1\nwildcard_04\n", out)

	out, err = run(t, "", "placeholder", "{wildcard_04} {wildcard_x}")
	require.NoError(t, err)
	assert.Equal(t, "{wildcard_05}\n", out)

	out, err = run(t, "", "combine", "a,", ", b", "  ")
	require.NoError(t, err)
	assert.Equal(t, "a, b\n", out)

	out, err = run(t, "", "values", "--dynamic", "red|green")
	require.NoError(t, err)
	assert.Equal(t, "{red|green}\n", out)
}

func TestLibraryCommands(t *testing.T) {
	t.Setenv("PROMPTDRAFTER_STORAGE_BACKEND", "sqlite")
	t.Setenv("PROMPTDRAFTER_SQLITE_PATH", filepath.Join(t.TempDir(), "library.db"))

	out, err := run(t, "", "library", "save", "wildcard", "colors", "--raw-text", "red, green")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved wildcard 'colors'")

	out, err = run(t, "", "library", "ls", "wildcard")
	require.NoError(t, err)
	assert.Equal(t, "colors\n", out)

	out, err = run(t, "", "library", "show", "wildcard", "colors", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"values": [`)

	_, err = run(t, "", "library", "rm", "wildcard", "colors")
	require.NoError(t, err)

	_, err = run(t, "", "library", "rm", "wildcard", "colors")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("PROMPTDRAFTER_STORAGE_BACKEND", "memory")
	out, err := run(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "backend: memory")
	assert.Contains(t, out, "debounce: 300ms")
}
