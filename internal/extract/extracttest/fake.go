// Package extracttest provides an in-memory Extractor for package tests.
package extracttest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/backmassage/tablebatch/internal/config"
	"github.com/backmassage/tablebatch/internal/extract"
)

// Fake records every Extract call and answers from Result. When Result is
// nil every document yields one table.
type Fake struct {
	// Result returns the table count (or an error) for a document path.
	Result func(path string) (int, error)
	// ExportErr, when set, is returned by every Export.
	ExportErr error

	mu    sync.Mutex
	calls []string
}

// Extract implements extract.Extractor.
func (f *Fake) Extract(ctx context.Context, path string, opts extract.Options) (extract.Tables, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := 1
	if f.Result != nil {
		var err error
		if n, err = f.Result(path); err != nil {
			return nil, err
		}
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &tables{n: n, stem: stem, format: opts.Format, exportErr: f.ExportErr}, nil
}

// Calls returns the document paths passed to Extract, in call order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times Extract ran.
func (f *Fake) CallCount() int { return len(f.Calls()) }

type tables struct {
	n         int
	stem      string
	format    config.Format
	exportErr error
}

func (t *tables) Len() int { return t.n }

// Export writes one small artifact per table.
func (t *tables) Export(dir string, format config.Format) error {
	if t.exportErr != nil {
		return t.exportErr
	}
	ext, err := extract.Extension(format)
	if err != nil {
		return err
	}
	for i := 1; i <= t.n; i++ {
		name := fmt.Sprintf("%s-table-%d%s", t.stem, i, ext)
		if err := os.WriteFile(filepath.Join(dir, name), []byte("col\nval\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (t *tables) Close() error { return nil }
