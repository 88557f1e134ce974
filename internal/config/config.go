// Package config holds runtime configuration: defaults, layered loading
// (config file, environment, CLI flags) and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// Format selects the export encoding produced for each extracted table set.
type Format string

const (
	FormatCSV      Format = "csv" // One file per table (default).
	FormatJSON     Format = "json"
	FormatExcel    Format = "excel"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatSQLite   Format = "sqlite"
)

// Formats lists every supported export format in help-text order.
var Formats = []Format{FormatCSV, FormatJSON, FormatExcel, FormatHTML, FormatMarkdown, FormatSQLite}

// Valid reports whether f is a supported export format.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Flavor selects the table detection strategy of the extraction tool.
type Flavor string

const (
	FlavorStream  Flavor = "stream"  // Whitespace-separated tables (default).
	FlavorLattice Flavor = "lattice" // Ruled tables; needs Ghostscript.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// PagesAll selects every page of a document.
const PagesAll = "all"

// Sentinel errors returned by Validate and ValidatePaths.
var (
	ErrInvalidFormat  = errors.New("invalid format")
	ErrInvalidFlavor  = errors.New("invalid flavor (use 'stream' or 'lattice')")
	ErrInvalidPages   = errors.New("invalid page selection")
	ErrInvalidColor   = errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	ErrInvalidJobs    = errors.New("jobs must not be negative")
	ErrInvalidTimeout = errors.New("timeout must not be negative")
	ErrMissingArgs    = errors.New("need exactly input_dir and output_dir")
	ErrInputMissing   = errors.New("input directory does not exist")
	ErrInputNotDir    = errors.New("input path is not a directory")
)

// Config holds all runtime settings. It is produced by [Load] (or
// [DefaultConfig] in tests) and passed by pointer to packages that need it.
type Config struct {
	// Paths (set from positional args).
	InputDir  string `mapstructure:"-"`
	OutputDir string `mapstructure:"-"`

	// Extraction options forwarded to every unit.
	Format Format `mapstructure:"format"` // Default: "csv".
	Flavor Flavor `mapstructure:"flavor"` // Default: "stream".
	Pages  string `mapstructure:"pages"`  // Default: "all".

	// Batch behavior.
	Recursive    bool          `mapstructure:"recursive"`
	Force        bool          `mapstructure:"force"`    // Reprocess units even when up to date.
	ValidateOnly bool          `mapstructure:"validate"` // Report outdated units, never write.
	Jobs         int           `mapstructure:"jobs"`     // 0 selects runtime.NumCPU().
	Timeout      time.Duration `mapstructure:"timeout"`  // Per-unit limit; 0 disables it.

	// External tools.
	CamelotBin string `mapstructure:"camelot"` // Default: "camelot" resolved on PATH.

	// Display, logging and metrics.
	Verbose     bool      `mapstructure:"verbose"`
	ColorMode   ColorMode `mapstructure:"color"`        // Default: "auto".
	LogFile     string    `mapstructure:"log"`          // Optional log file path.
	MetricsFile string    `mapstructure:"metrics_file"` // Optional Prometheus textfile.
	CheckOnly   bool      `mapstructure:"-"`            // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		Format:     FormatCSV,
		Flavor:     FlavorStream,
		Pages:      PagesAll,
		CamelotBin: "camelot",
		ColorMode:  ColorAuto,
	}
}

// SkipExisting reports whether up-to-date units should be skipped.
func (c *Config) SkipExisting() bool { return !c.Force }

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields, the page selection and numeric limits.
// When not in CheckOnly mode, it also requires that both directory paths are
// non-empty.
func (c *Config) Validate() error {
	if !c.Format.Valid() {
		names := make([]string, len(Formats))
		for i, f := range Formats {
			names[i] = string(f)
		}
		return fmt.Errorf("%w %q (use one of: %s)", ErrInvalidFormat, c.Format, strings.Join(names, ", "))
	}

	switch c.Flavor {
	case FlavorStream, FlavorLattice:
		// valid
	default:
		return ErrInvalidFlavor
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return ErrInvalidColor
	}

	pages, err := NormalizePages(c.Pages)
	if err != nil {
		return err
	}
	c.Pages = pages

	if c.Jobs < 0 {
		return ErrInvalidJobs
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return ErrMissingArgs
	}
	return nil
}

// NormalizePages validates a page selection and returns it without blanks.
// Accepted forms: "all", "N", "N-M", "N-end" and comma lists of those
// (e.g. "1,3-5,7-end"). Page numbers start at 1.
func NormalizePages(raw string) (string, error) {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if s == "" || s == PagesAll {
		return PagesAll, nil
	}
	for _, part := range strings.Split(s, ",") {
		if err := checkPageRange(part); err != nil {
			return "", fmt.Errorf("%w %q: %v", ErrInvalidPages, raw, err)
		}
	}
	return s, nil
}

func checkPageRange(part string) error {
	lo, hi, isRange := strings.Cut(part, "-")
	first, err := pageNumber(lo)
	if err != nil {
		return err
	}
	if !isRange || hi == "end" {
		return nil
	}
	last, err := pageNumber(hi)
	if err != nil {
		return err
	}
	if last < first {
		return fmt.Errorf("range %s is reversed", part)
	}
	return nil
}

func pageNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q is not a page number", s)
	}
	return n, nil
}

// ValidatePaths checks that the input directory exists and is a directory.
// It runs before any processing so a bad input path never causes writes.
func (c *Config) ValidatePaths() error {
	fi, err := os.Stat(c.InputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputMissing, c.InputDir)
		}
		return fmt.Errorf("stat input: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrInputNotDir, c.InputDir)
	}
	return nil
}

// OutputInsideInput reports whether the resolved output directory is inside
// (or equal to) the resolved input directory. Both arguments must be
// absolute, symlink-resolved paths.
func OutputInsideInput(inputAbs, outputAbs string) bool {
	sep := string(filepath.Separator)
	return outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep)
}
