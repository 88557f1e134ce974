package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/tablebatch/internal/config"
)

func TestExtension(t *testing.T) {
	tests := map[config.Format]string{
		config.FormatCSV:      ".csv",
		config.FormatJSON:     ".json",
		config.FormatExcel:    ".xlsx",
		config.FormatHTML:     ".html",
		config.FormatMarkdown: ".md",
		config.FormatSQLite:   ".db",
	}
	for f, want := range tests {
		got, err := Extension(f)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Extension("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestBuild(t *testing.T) {
	args := Build("camelot", "/in/a.pdf", "/stage/a.csv", Options{
		Format: config.FormatCSV, Flavor: config.FlavorLattice, Pages: "1-3",
	})
	assert.Equal(t, []string{
		"camelot", "--format", "csv", "--output", "/stage/a.csv",
		"--pages", "1-3", "lattice", "/in/a.pdf",
	}, args)
}

func TestBuild_Defaults(t *testing.T) {
	args := Build("/opt/camelot", "a.pdf", "a.json", Options{Format: config.FormatJSON})
	assert.Contains(t, args, "all")
	assert.Equal(t, "stream", args[len(args)-2])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{"encrypted", "Traceback...\nPdfReadError: File has not been decrypted\n", ErrEncrypted},
		{"ghostscript", "Ghostscript is not installed. You can install it using the instructions here", ErrGhostscriptMissing},
		{"pages", "IndexError: list index out of range", ErrPageRange},
		{"not pdf", "PdfReadError: EOF marker not found", ErrNotPDF},
		{"unknown", "Segmentation fault", ErrToolFailed},
		{"empty", "", ErrToolFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.stderr, errors.New("exit status 1"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClassify_KeepsLastLine(t *testing.T) {
	err := Classify("Traceback (most recent call last):\n  File x\nPdfReadError: EOF marker not found\n\n", nil)
	assert.EqualError(t, err, "not a readable PDF: PdfReadError: EOF marker not found")

	err = Classify("", errors.New("exit status 2"))
	assert.EqualError(t, err, "camelot failed: exit status 2")
}

func TestParseTableCount(t *testing.T) {
	assert.Equal(t, 3, ParseTableCount("Found 3 tables\n"))
	assert.Equal(t, 1, ParseTableCount("warning\nFound 1 table\n"))
	assert.Equal(t, 0, ParseTableCount("Found 0 tables"))
	assert.Equal(t, -1, ParseTableCount("nothing here"))
}

// fakeCamelot writes a shell script that mimics the camelot CLI: it reads
// --output, writes one artifact per table named like camelot does, and
// prints the table count.
func fakeCamelot(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "camelot")
	script := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --output) out="$2"; shift 2 ;;
    --format|--pages) shift 2 ;;
    *) shift ;;
  esac
done
base="${out%.*}"
ext="${out##*.}"
` + body
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestCamelot_ExtractAndExport(t *testing.T) {
	bin := fakeCamelot(t, `
echo "a,b" > "${base}-page-1-table-1.${ext}"
echo "c,d" > "${base}-page-2-table-1.${ext}"
echo "Found 2 tables"
`)
	c := &Camelot{Bin: bin, StagingRoot: t.TempDir()}

	tables, err := c.Extract(context.Background(), "/docs/report.pdf", Options{Format: config.FormatCSV})
	require.NoError(t, err)
	defer tables.Close()
	assert.Equal(t, 2, tables.Len())

	dest := t.TempDir()
	require.NoError(t, tables.Export(dest, config.FormatCSV))
	assert.FileExists(t, filepath.Join(dest, "report-page-1-table-1.csv"))
	assert.FileExists(t, filepath.Join(dest, "report-page-2-table-1.csv"))

	require.NoError(t, tables.Close())
	entries, err := os.ReadDir(c.StagingRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging removed on Close")
}

func TestCamelot_CountFallsBackToFiles(t *testing.T) {
	bin := fakeCamelot(t, `echo "{}" > "${base}.${ext}"`)
	c := &Camelot{Bin: bin, StagingRoot: t.TempDir()}

	tables, err := c.Extract(context.Background(), "/docs/a.pdf", Options{Format: config.FormatJSON})
	require.NoError(t, err)
	defer tables.Close()
	assert.Equal(t, 1, tables.Len())
}

func TestCamelot_ZeroTables(t *testing.T) {
	bin := fakeCamelot(t, `echo "Found 0 tables"`)
	c := &Camelot{Bin: bin, StagingRoot: t.TempDir()}

	tables, err := c.Extract(context.Background(), "/docs/a.pdf", Options{Format: config.FormatCSV})
	require.NoError(t, err)
	defer tables.Close()
	assert.Zero(t, tables.Len())
}

func TestCamelot_ExportFormatMismatch(t *testing.T) {
	bin := fakeCamelot(t, `echo x > "${base}.${ext}"; echo "Found 1 tables"`)
	c := &Camelot{Bin: bin, StagingRoot: t.TempDir()}

	tables, err := c.Extract(context.Background(), "/docs/a.pdf", Options{Format: config.FormatHTML})
	require.NoError(t, err)
	defer tables.Close()
	assert.ErrorIs(t, tables.Export(t.TempDir(), config.FormatCSV), ErrFormatMismatch)
}

func TestCamelot_FailureIsClassified(t *testing.T) {
	bin := fakeCamelot(t, `echo "PdfReadError: File has not been decrypted" >&2; exit 1`)
	c := &Camelot{Bin: bin, StagingRoot: t.TempDir()}

	_, err := c.Extract(context.Background(), "/docs/a.pdf", Options{Format: config.FormatCSV})
	assert.ErrorIs(t, err, ErrEncrypted)

	entries, _ := os.ReadDir(c.StagingRoot)
	assert.Empty(t, entries, "staging removed on failure")
}

func TestCamelot_ReportedTablesWithoutFiles(t *testing.T) {
	bin := fakeCamelot(t, `echo "Found 2 tables"`)
	c := &Camelot{Bin: bin, StagingRoot: t.TempDir()}

	_, err := c.Extract(context.Background(), "/docs/a.pdf", Options{Format: config.FormatCSV})
	assert.ErrorIs(t, err, ErrToolFailed)
}

func TestCamelot_MissingBinary(t *testing.T) {
	c := &Camelot{Bin: filepath.Join(t.TempDir(), "no-camelot"), StagingRoot: t.TempDir()}
	_, err := c.Extract(context.Background(), "/docs/a.pdf", Options{Format: config.FormatCSV})
	assert.ErrorIs(t, err, ErrToolFailed)
}

func TestCamelot_UnknownFormat(t *testing.T) {
	c := &Camelot{Bin: "camelot", StagingRoot: t.TempDir()}
	_, err := c.Extract(context.Background(), "/docs/a.pdf", Options{Format: "xml"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestCamelot_ContextDeadline(t *testing.T) {
	bin := fakeCamelot(t, `exec sleep 5`)
	c := &Camelot{Bin: bin, StagingRoot: t.TempDir()}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := c.Extract(ctx, "/docs/a.pdf", Options{Format: config.FormatCSV})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
