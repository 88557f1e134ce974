package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel errors for classified camelot failures.
var (
	ErrEncrypted          = errors.New("document is encrypted")
	ErrGhostscriptMissing = errors.New("ghostscript is required for the lattice flavor")
	ErrPageRange          = errors.New("page selection does not match the document")
	ErrNotPDF             = errors.New("not a readable PDF")
	ErrToolFailed         = errors.New("camelot failed")
)

// Pre-compiled regexes for classifying camelot stderr. Checked in order by
// [Classify]; the first match wins.
var (
	reEncrypted = regexp.MustCompile(
		`(?i)file has not been decrypted|` +
			`password is (incorrect|required)|` +
			`encrypted`)

	reGhostscript = regexp.MustCompile(
		`(?i)ghostscript is not installed|` +
			`ghostscript.*not found|` +
			`No module named '?ghostscript`)

	rePageRange = regexp.MustCompile(
		`(?i)page .*(out of range|does not exist)|` +
			`invalid page|` +
			`list index out of range`)

	reNotPDF = regexp.MustCompile(
		`(?i)PdfReadError|PdfStreamError|` +
			`EOF marker not found|` +
			`invalid pdf header|` +
			`cannot read an empty file`)

	reTableCount = regexp.MustCompile(`(?m)Found (\d+) tables?`)
)

var classifiers = []struct {
	re  *regexp.Regexp
	err error
}{
	{reEncrypted, ErrEncrypted},
	{reGhostscript, ErrGhostscriptMissing},
	{rePageRange, ErrPageRange},
	{reNotPDF, ErrNotPDF},
}

// Classify maps camelot stderr to a wrapped sentinel error carrying the last
// meaningful stderr line. Unrecognized output yields ErrToolFailed.
func Classify(stderr string, runErr error) error {
	detail := lastLine(stderr)
	if detail == "" && runErr != nil {
		detail = runErr.Error()
	}
	for _, c := range classifiers {
		if c.re.MatchString(stderr) {
			return fmt.Errorf("%w: %s", c.err, detail)
		}
	}
	return fmt.Errorf("%w: %s", ErrToolFailed, detail)
}

// ParseTableCount returns the table count camelot printed, or -1 when the
// output has no count line.
func ParseTableCount(output string) int {
	m := reTableCount.FindAllStringSubmatch(output, -1)
	if len(m) == 0 {
		return -1
	}
	n, err := strconv.Atoi(m[len(m)-1][1])
	if err != nil {
		return -1
	}
	return n
}

// lastLine returns the final non-blank line of s, trimmed.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
