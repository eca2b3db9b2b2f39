package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	json "github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

// File is a Ledger stored as a JSON array of hex digests. The file is held
// under an advisory lock from Open until Close.
type File struct {
	path string
	lock *flock.Flock

	mu   sync.Mutex
	seen mapset.Set[string]
}

// Open locks and loads the ledger at path. A missing file is an empty
// ledger.
func Open(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock ledger: %w", err)
	}
	if !locked {
		return nil, &ErrLedgerLocked{path: path}
	}

	seen, err := load(path)
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	return &File{
		path: path,
		lock: lock,
		seen: seen,
	}, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Contains(hash string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.ContainsOne(normalize(hash))
}

func (f *File) Insert(hash string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Add(normalize(hash))
}

func (f *File) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Cardinality()
}

// Merge adds the hashes and returns how many were new.
func (f *File) Merge(hashes []string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	added := 0
	for _, h := range hashes {
		if f.seen.Add(normalize(h)) {
			added++
		}
	}
	return added
}

// Flush re-reads the stored set, unions it with the in-memory set and
// replaces the file through a synced temp file.
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, err := load(f.path)
	if err != nil {
		return err
	}
	f.seen = f.seen.Union(stored)

	return save(f.path, f.seen)
}

// Close releases the lock. It does not flush.
func (f *File) Close() error {
	return f.lock.Unlock()
}

func normalize(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}

func load(path string) (mapset.Set[string], error) {
	seen := mapset.NewThreadUnsafeSet[string]()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return seen, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return seen, nil
	}

	hashes, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", path, err)
	}
	for _, h := range hashes {
		seen.Add(normalize(h))
	}
	return seen, nil
}

func save(path string, seen mapset.Set[string]) error {
	data, err := Encode(seen.ToSlice())
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

// Encode writes the hashes as a sorted JSON array.
func Encode(hashes []string) ([]byte, error) {
	sorted := make([]string, len(hashes))
	copy(sorted, hashes)
	sort.Strings(sorted)
	return json.MarshalIndent(sorted, "", "  ")
}

func Decode(data []byte) ([]string, error) {
	var hashes []string
	if err := json.Unmarshal(data, &hashes); err != nil {
		return nil, err
	}
	return hashes, nil
}
