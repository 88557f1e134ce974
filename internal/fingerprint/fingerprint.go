// Package fingerprint computes content fingerprints of input documents and
// persists them next to their extracted output.
//
// A fingerprint is the pair (size, SHA-256). The sidecar file written by
// [Store.Save] is the only record of a completed extraction.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strconv"
)

// DefaultChunkSize is the read size used when hashing documents.
const DefaultChunkSize = 4096

// ErrInvalidHash is returned when a stored hash is not 64 lowercase hex digits.
var ErrInvalidHash = errors.New("hash must be 64 lowercase hex digits")

// Fingerprint identifies the content of one document.
type Fingerprint struct {
	Size int64  `json:"size"`
	Hash string `json:"hash"`
}

// Equal reports whether both fields match. Modification time is deliberately
// not part of a fingerprint: fresh checkouts rewrite mtimes without touching
// content, and those documents must still count as processed.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Size == other.Size && f.Hash == other.Hash
}

// Changes lists the human-readable differences from old to f, e.g.
// "size: 120 -> 240" and "hash changed". It is empty when they are equal.
func (f Fingerprint) Changes(old Fingerprint) []string {
	var changes []string
	if old.Size != f.Size {
		changes = append(changes, "size: "+strconv.FormatInt(old.Size, 10)+" -> "+strconv.FormatInt(f.Size, 10))
	}
	if old.Hash != f.Hash {
		changes = append(changes, "hash changed")
	}
	return changes
}

// Validate checks the hash encoding.
func (f Fingerprint) Validate() error {
	if len(f.Hash) != hex.EncodedLen(sha256.Size) {
		return ErrInvalidHash
	}
	for _, c := range f.Hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return ErrInvalidHash
		}
	}
	if f.Size < 0 {
		return fmt.Errorf("negative size %d", f.Size)
	}
	return nil
}

// Compute reads r to EOF in DefaultChunkSize chunks.
func Compute(r io.Reader) (Fingerprint, error) {
	return ComputeChunked(r, DefaultChunkSize)
}

// ComputeChunked reads r to EOF in chunkSize reads. The result does not
// depend on chunkSize; only the memory held at once does.
func ComputeChunked(r io.Reader, chunkSize int) (Fingerprint, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	h := sha256.New()
	size, err := hashChunks(h, r, make([]byte, chunkSize))
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{Size: size, Hash: hex.EncodeToString(h.Sum(nil))}, nil
}

// hashChunks feeds r into h one buffer at a time. io.CopyBuffer is avoided
// because *os.File implements WriterTo and would ignore buf.
func hashChunks(h hash.Hash, r io.Reader, buf []byte) (int64, error) {
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// ComputeFile fingerprints the file at path.
func ComputeFile(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer f.Close()

	fp, err := Compute(f)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("read %s: %w", path, err)
	}
	return fp, nil
}
