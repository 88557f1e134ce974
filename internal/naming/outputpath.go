package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Target pairs a document with its output location.
type Target struct {
	Path     string // Document path as discovered.
	Name     string // Path relative to the scan root, slash-separated.
	Location string // Output directory owned by this document.
}

// OutputLocation builds the canonical output directory for unit, which must
// lie under root.
//
//	<root>/reports/q1.pdf  ->  <outDir>/reports/q1
func OutputLocation(root, outDir, unit string) (string, error) {
	rel, err := filepath.Rel(root, unit)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", unit, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", unit, root)
	}
	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	return filepath.Join(outDir, filepath.Dir(rel), stem), nil
}

// Layout assigns an output location to every unit, in order. Units must be
// in a deterministic order (Discover sorts them) for collision suffixes to be
// stable across runs.
func Layout(root, outDir string, units []string) ([]Target, error) {
	resolver := NewCollisionResolver()
	targets := make([]Target, 0, len(units))
	for _, unit := range units {
		loc, err := OutputLocation(root, outDir, unit)
		if err != nil {
			return nil, err
		}
		rel, _ := filepath.Rel(root, unit)
		targets = append(targets, Target{
			Path:     unit,
			Name:     filepath.ToSlash(rel),
			Location: resolver.Resolve(unit, loc),
		})
	}
	return targets, nil
}
