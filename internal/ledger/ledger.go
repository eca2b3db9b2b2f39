// Package ledger keeps the set of content hashes that have already been
// accepted, so the same content is never kept twice across runs.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const chunkSize = 64 * 1024

type Ledger interface {
	Contains(hash string) bool

	// Insert adds the hash and reports whether it was not already present.
	Insert(hash string) bool

	Len() int

	// Flush persists the set, merging with whatever is already stored.
	Flush() error
}

// ShouldKeep records hash in the ledger and reports true the first time it
// is seen. Callers delete their copy when it returns false.
func ShouldKeep(l Ledger, hash string) bool {
	return l.Insert(hash)
}

// HashFile returns the lowercase hex sha256 of the file contents.
func HashFile(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer in.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, in, buf); err != nil {
		return "", fmt.Errorf("failed to generate hash for %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
