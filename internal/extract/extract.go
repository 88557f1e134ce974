package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/backmassage/tablebatch/internal/config"
)

// Sentinel errors for unusable export requests.
var (
	ErrUnknownFormat  = errors.New("unknown output format")
	ErrFormatMismatch = errors.New("tables were extracted for a different format")
)

// Options are the per-run extraction settings forwarded to every document.
type Options struct {
	Format config.Format
	Flavor config.Flavor
	Pages  string
}

// OptionsFromConfig copies the extraction settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{Format: cfg.Format, Flavor: cfg.Flavor, Pages: cfg.Pages}
}

// Tables is the result of one extraction.
type Tables interface {
	// Len is the number of tables found; zero is a valid result.
	Len() int
	// Export writes every table into dir, which must exist.
	Export(dir string, format config.Format) error
	// Close releases temporary resources. It is safe to call after Export.
	Close() error
}

// Extractor turns a document into tables.
type Extractor interface {
	Extract(ctx context.Context, path string, opts Options) (Tables, error)
}

// extensions maps each format to the file extension of its artifacts.
var extensions = map[config.Format]string{
	config.FormatCSV:      ".csv",
	config.FormatJSON:     ".json",
	config.FormatExcel:    ".xlsx",
	config.FormatHTML:     ".html",
	config.FormatMarkdown: ".md",
	config.FormatSQLite:   ".db",
}

// Extension returns the artifact extension for f, including the dot.
func Extension(f config.Format) (string, error) {
	ext, ok := extensions[f]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return ext, nil
}
