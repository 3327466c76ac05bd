// Package storage contains the in-memory object store used by the API server
// in development and by tests.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dharsanguruparan/coedash/internal/model"
)

var (
	// ErrNotFound is returned by Get for missing keys.
	ErrNotFound = errors.New("object not found")
)

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore keeps objects in a map guarded by an RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*object
	now     func() time.Time
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]*object),
		now:     time.Now,
	}
}

// SetClock replaces the clock used for modification times.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Put stores the object, replacing any previous one under key.
func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(io.LimitReader(r, size+1))
	if err != nil {
		return fmt.Errorf("read object: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("object %s: expected %d bytes, got %d", key, size, len(data))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = &object{data: data, contentType: contentType, modified: m.now().UTC()}
	return nil
}

// Exists reports whether key is stored.
func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Remove deletes key. Removing a missing key is not an error.
func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// List returns the objects under prefix sorted by key.
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]model.Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Object, 0, len(m.objects))
	for key, obj := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, model.Object{
			Key:          key,
			Size:         int64(len(obj.data)),
			ContentType:  obj.contentType,
			LastModified: obj.modified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Open returns a reader over a copy of the object.
func (m *MemoryStore) Open(ctx context.Context, key string) (io.ReadCloser, model.Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, model.Object{}, ErrNotFound
	}
	data := append([]byte(nil), obj.data...)
	info := model.Object{Key: key, Size: int64(len(data)), ContentType: obj.contentType, LastModified: obj.modified}
	return io.NopCloser(bytes.NewReader(data)), info, nil
}
