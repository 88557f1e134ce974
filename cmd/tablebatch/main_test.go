package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/tablebatch/internal/fingerprint"
	"github.com/backmassage/tablebatch/internal/logging/logtest"
)

func TestRun_InputMissing(t *testing.T) {
	chdir(t, t.TempDir())
	out := filepath.Join(t.TempDir(), "out")

	code := run([]string{"--no-color", filepath.Join(t.TempDir(), "missing"), out})
	assert.Equal(t, 1, code)
	assert.NoDirExists(t, out, "nothing written before the input is validated")
}

func TestRun_InputNotDirectory(t *testing.T) {
	chdir(t, t.TempDir())
	file := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0o644))

	assert.Equal(t, 1, run([]string{"--no-color", file, t.TempDir()}))
}

func TestRun_BadFlagValue(t *testing.T) {
	chdir(t, t.TempDir())
	assert.Equal(t, 1, run([]string{"--format", "xml", t.TempDir(), t.TempDir()}))
	assert.Equal(t, 1, run([]string{"--pages", "3-1", t.TempDir(), t.TempDir()}))
}

func TestRun_MissingPositionalArgs(t *testing.T) {
	chdir(t, t.TempDir())
	assert.Equal(t, 1, run([]string{t.TempDir()}))
}

func TestRun_EmptyInputSucceeds(t *testing.T) {
	chdir(t, t.TempDir())
	assert.Equal(t, 0, run([]string{"--no-color", t.TempDir(), filepath.Join(t.TempDir(), "out")}))
}

func TestRun_ValidateOutdatedFails(t *testing.T) {
	chdir(t, t.TempDir())
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.pdf"), []byte("%PDF a"), 0o644))

	assert.Equal(t, 1, run([]string{"--no-color", "--validate", in, out}))
	assert.NoDirExists(t, out, "validate never writes")
}

func TestRun_ValidateCurrentSucceeds(t *testing.T) {
	chdir(t, t.TempDir())
	in := t.TempDir()
	out := t.TempDir()
	unit := filepath.Join(in, "a.pdf")
	require.NoError(t, os.WriteFile(unit, []byte("%PDF a"), 0o644))

	loc := filepath.Join(out, "a")
	require.NoError(t, os.MkdirAll(loc, 0o755))
	fp, err := fingerprint.ComputeFile(unit)
	require.NoError(t, err)
	fingerprint.NewStore(&logtest.Recorder{}).Save(loc, fp)

	metricsFile := filepath.Join(t.TempDir(), "tablebatch.prom")
	assert.Equal(t, 0, run([]string{"--no-color", "--validate", "--metrics-file", metricsFile, in, out}))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tablebatch_outdated_units 0")
}

func TestRun_ValidateViaEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TABLEBATCH_VALIDATE", "true")
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.pdf"), []byte("%PDF a"), 0o644))

	assert.Equal(t, 1, run([]string{"--no-color", in, filepath.Join(t.TempDir(), "out")}))
}

func TestRun_CheckWithMissingCamelot(t *testing.T) {
	chdir(t, t.TempDir())
	assert.Equal(t, 1, run([]string{"--no-color", "--check", "--camelot", filepath.Join(t.TempDir(), "nope")}))
}
