package storage

import (
	"context"
	"errors"
	"sync"

	procurementapp "github.com/procurement/backend/internal/application/procurement"
)

// MemoryObjectStorage keeps documents in process memory. It is selected when
// storage.enabled is false, so development setups work without an S3 endpoint.
type MemoryObjectStorage struct {
	// BaseURL prefixes the returned URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates a new MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "memory://documents",
		objects: make(map[string]memoryObject),
	}
}

// Ensure MemoryObjectStorage implements ObjectStorage
var _ procurementapp.ObjectStorage = (*MemoryObjectStorage)(nil)

// Upload stores a copy of data and returns its URL
func (s *MemoryObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return s.BaseURL + "/" + storageKey, nil
}

// Delete removes the object behind url. Deleting a missing object is not an error.
func (s *MemoryObjectStorage) Delete(ctx context.Context, url string) error {
	key, err := keyFromURL(s.BaseURL, url)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Get returns a stored object
func (s *MemoryObjectStorage) Get(storageKey string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	return obj.data, obj.contentType, ok
}

// Len returns the number of stored objects
func (s *MemoryObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
