package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore is an in-process ObjectStore used in tests and local
// development. The error fields, when set, make the corresponding call fail
// so workflows' cleanup paths can be exercised.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject

	PutErr  error
	StatErr error
	GetErr  error

	deletes map[string]int
}

// NewMemoryStore initializes an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		deletes: make(map[string]int),
	}
}

// Put stores the object bytes.
func (m *MemoryStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

// Get opens a stored object.
func (m *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if m.GetErr != nil {
		return nil, ObjectInfo{}, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	info := ObjectInfo{Key: key, ContentType: obj.contentType, Size: int64(len(obj.data))}
	return io.NopCloser(bytes.NewReader(obj.data)), info, nil
}

// Stat returns stored object metadata.
func (m *MemoryStore) Stat(_ context.Context, key string) (ObjectInfo, error) {
	if m.StatErr != nil {
		return ObjectInfo{}, m.StatErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return ObjectInfo{}, ErrObjectNotFound
	}
	return ObjectInfo{Key: key, ContentType: obj.contentType, Size: int64(len(obj.data))}, nil
}

// Delete removes an object; absent keys are ignored.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deletes[key]++
	return nil
}

// Len reports how many objects are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Deletes reports how many times Delete was called for key.
func (m *MemoryStore) Deletes(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes[key]
}

// DeleteCalls reports how many times Delete was called in total.
func (m *MemoryStore) DeleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.deletes {
		total += n
	}
	return total
}
