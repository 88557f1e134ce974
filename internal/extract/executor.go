package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/backmassage/tablebatch/internal/config"
)

// waitDelay bounds how long a cancelled camelot may hold its pipes open.
const waitDelay = 5 * time.Second

// ExecResult holds the outcome of a single camelot invocation.
type ExecResult struct {
	Stdout string
	Stderr string
	Err    error
}

// Execute runs argv. When tee is non-nil, stderr is copied to it in real
// time; it is always captured for classification.
func Execute(ctx context.Context, argv []string, tee io.Writer) ExecResult {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.WaitDelay = waitDelay

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if tee != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, tee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return ExecResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}

// Camelot is the Extractor backed by the camelot command-line tool.
type Camelot struct {
	// Bin is the executable name or path.
	Bin string
	// StagingRoot is where per-document staging dirs are created; empty
	// means os.TempDir().
	StagingRoot string
	// Tee receives camelot's stderr live when non-nil (verbose mode).
	Tee io.Writer
}

// NewCamelot returns a Camelot configured from cfg.
func NewCamelot(cfg *config.Config) *Camelot {
	c := &Camelot{Bin: cfg.CamelotBin}
	if cfg.Verbose {
		c.Tee = os.Stderr
	}
	return c
}

// Extract runs camelot on path into a fresh staging directory. The returned
// Tables owns that directory until Close.
func (c *Camelot) Extract(ctx context.Context, path string, opts Options) (Tables, error) {
	ext, err := Extension(opts.Format)
	if err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp(c.StagingRoot, "tablebatch-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	argv := Build(c.Bin, path, filepath.Join(staging, stem+ext), opts)
	res := Execute(ctx, argv, c.Tee)
	if res.Err != nil {
		_ = os.RemoveAll(staging)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var execErr *exec.Error
		if errors.As(res.Err, &execErr) {
			return nil, fmt.Errorf("%w: %v", ErrToolFailed, execErr)
		}
		return nil, Classify(res.Stderr, res.Err)
	}

	files, err := listFiles(staging)
	if err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("read staging dir: %w", err)
	}

	count := ParseTableCount(res.Stdout + "\n" + res.Stderr)
	if count < 0 {
		count = len(files)
	}
	if count > 0 && len(files) == 0 {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("%w: reported %d table(s) but wrote no files", ErrToolFailed, count)
	}

	return &stagedTables{dir: staging, files: files, count: count, format: opts.Format}, nil
}

// stagedTables are camelot artifacts waiting in a staging directory.
type stagedTables struct {
	dir    string
	files  []string
	count  int
	format config.Format
}

func (s *stagedTables) Len() int { return s.count }

// Export moves every staged artifact into dir, keeping camelot's file names.
func (s *stagedTables) Export(dir string, format config.Format) error {
	if format != s.format {
		return fmt.Errorf("%w: have %s, want %s", ErrFormatMismatch, s.format, format)
	}
	for _, name := range s.files {
		if err := moveFile(filepath.Join(s.dir, name), filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}
	return nil
}

func (s *stagedTables) Close() error {
	return os.RemoveAll(s.dir)
}

// listFiles returns the regular files directly under dir, sorted.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// moveFile renames src to dst, falling back to copy + remove when the two
// live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
