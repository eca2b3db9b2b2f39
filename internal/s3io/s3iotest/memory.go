// Package s3iotest provides an in-memory s3io.Client for tests.
package s3iotest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/studio1767/phonesync/internal/s3io"
)

// Object is a stored upload and how it was sent.
type Object struct {
	Data       []byte
	Compressed bool
	Encrypted  bool
	Passphrase bool
}

// Memory keeps objects in a map. Uploads are stored in plain form and
// only flagged with the requested treatment.
type Memory struct {
	mu         sync.Mutex
	Objects    map[string]Object
	Recipients bool
	Passkeys   bool
}

var _ s3io.Client = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		Objects:    make(map[string]Object),
		Recipients: true,
		Passkeys:   true,
	}
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[key]
	return ok, nil
}

func (m *Memory) LatestMatching(ctx context.Context, prefix string) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for k := range m.Objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", 0, &s3io.ErrNoMatch{}
	}
	sort.Strings(keys)
	last := keys[len(keys)-1]
	return last, int64(len(m.Objects[last].Data)), nil
}

func (m *Memory) Upload(ctx context.Context, key string, source io.Reader) (int64, error) {
	return m.put(key, source, Object{})
}

func (m *Memory) UploadEncrypted(ctx context.Context, key string, source io.Reader, compress bool) (int64, error) {
	if !m.Recipients {
		return 0, &s3io.ErrNoRecipients{}
	}
	return m.put(key, source, Object{Compressed: compress, Encrypted: true})
}

func (m *Memory) UploadPassphrase(ctx context.Context, key string, source io.Reader, compress bool) (int64, error) {
	if !m.Passkeys {
		return 0, fmt.Errorf("no passphrase for %s", key)
	}
	return m.put(key, source, Object{Compressed: compress, Passphrase: true})
}

func (m *Memory) CanEncrypt() bool {
	return m.Recipients
}

func (m *Memory) Download(ctx context.Context, key string, sink io.Writer) (int64, error) {
	m.mu.Lock()
	obj, ok := m.Objects[key]
	m.mu.Unlock()

	if !ok {
		return 0, fmt.Errorf("no such object: %s", key)
	}
	return io.Copy(sink, bytes.NewReader(obj.Data))
}

// Keys returns the stored keys in order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Memory) put(key string, source io.Reader, obj Object) (int64, error) {
	data, err := io.ReadAll(source)
	if err != nil {
		return 0, err
	}
	obj.Data = data

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = obj
	return int64(len(data)), nil
}
