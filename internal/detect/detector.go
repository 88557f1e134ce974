// Package detect decides whether a document's extracted output is current.
package detect

import (
	"os"
	"strings"

	"github.com/backmassage/tablebatch/internal/fingerprint"
)

// Reasons reported for documents that need processing.
const (
	ReasonOutputMissing   = "not processed (output directory missing)"
	ReasonMetadataMissing = "not processed (metadata missing)"
)

// Detector compares a document's current fingerprint against the one stored
// in its output location. It only reads.
type Detector struct {
	store *fingerprint.Store
}

// New returns a Detector reading sidecars through store.
func New(store *fingerprint.Store) *Detector {
	return &Detector{store: store}
}

// ShouldSkip reports whether unitPath is up to date with location. When it is
// not, reason says why; reason is empty when skip is true.
func (d *Detector) ShouldSkip(unitPath, location string) (skip bool, reason string) {
	if fi, err := os.Stat(location); err != nil || !fi.IsDir() {
		return false, ReasonOutputMissing
	}

	stored, ok := d.store.Load(location)
	if !ok {
		return false, ReasonMetadataMissing
	}

	current, err := fingerprint.ComputeFile(unitPath)
	if err != nil {
		return false, "unreadable (" + err.Error() + ")"
	}

	if current.Equal(stored) {
		return true, ""
	}
	return false, "out of date (" + strings.Join(current.Changes(stored), ", ") + ")"
}
