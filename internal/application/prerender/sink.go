package prerender

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/turtacn/CaratCompare/internal/infrastructure/storage/minio"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

// Sink receives rendered objects.
type Sink interface {
	Write(ctx context.Context, key string, data []byte, contentType string) error
}

// DirSink writes objects below Root, creating directories as needed.
type DirSink struct {
	Root string
}

// Write implements Sink.
func (d DirSink) Write(_ context.Context, key string, data []byte, _ string) error {
	path := filepath.Join(d.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "create output directory").WithDetail(path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "write page").WithDetail(path)
	}
	return nil
}

// StoreSink uploads objects to the published page bucket.
type StoreSink struct {
	Store minio.PageStore
}

// Write implements Sink.
func (s StoreSink) Write(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.Store.Put(ctx, key, data, contentType)
	return err
}

// MemorySink keeps objects in memory. It is safe for concurrent use.
type MemorySink struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{objects: map[string][]byte{}, types: map[string]string{}}
}

// Write implements Sink.
func (m *MemorySink) Write(_ context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	m.types[key] = contentType
	return nil
}

// Get returns the object stored under key.
func (m *MemorySink) Get(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, m.types[key], ok
}

// Len returns the number of stored objects.
func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
