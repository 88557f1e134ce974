package fingerprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SidecarName is the metadata file kept in every output location. The name is
// fixed so output trees written by earlier releases stay recognized.
const SidecarName = ".pdf_metadata.json"

// Logger is the logging surface the store needs.
type Logger interface {
	Warn(string, ...interface{})
}

// Store loads and saves fingerprint sidecars. Failures never propagate:
// a sidecar that cannot be read is treated as absent, and a failed save
// only means the document will be processed again next run.
type Store struct {
	log Logger
}

// NewStore returns a Store that reports read and write failures to log.
func NewStore(log Logger) *Store {
	return &Store{log: log}
}

// Path returns the sidecar path for an output location.
func Path(location string) string {
	return filepath.Join(location, SidecarName)
}

// Load returns the fingerprint stored in location. ok is false when there is
// no sidecar, or when it is unreadable, malformed, or holds an invalid hash.
func (s *Store) Load(location string) (fp Fingerprint, ok bool) {
	path := Path(location)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("Cannot read metadata %s: %v", path, err)
		}
		return Fingerprint{}, false
	}
	if err := json.Unmarshal(data, &fp); err != nil {
		s.log.Warn("Corrupt metadata %s: %v", path, err)
		return Fingerprint{}, false
	}
	if err := fp.Validate(); err != nil {
		s.log.Warn("Invalid metadata %s: %v", path, err)
		return Fingerprint{}, false
	}
	return fp, true
}

// Save writes fp into location. The previous sidecar, if any, is replaced
// atomically so concurrent readers see either the old or the new record.
func (s *Store) Save(location string, fp Fingerprint) {
	data, err := json.MarshalIndent(fp, "", "  ")
	if err != nil {
		s.log.Warn("Cannot encode metadata for %s: %v", location, err)
		return
	}
	if err := writeFileAtomic(Path(location), append(data, '\n')); err != nil {
		s.log.Warn("Cannot write metadata %s: %v", Path(location), err)
	}
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it, then renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
