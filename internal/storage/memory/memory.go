package memory

import (
	"context"
	"sync"

	"github.com/vtarasov/url-shortener/internal/storage"
)

// Storage implements an in-memory MappingStore for testing and development.
type Storage struct {
	urlMap map[string]string
	mutex  sync.RWMutex
}

// NewStorage creates a new in-memory storage instance.
func NewStorage() *Storage {
	return &Storage{
		urlMap: make(map[string]string),
	}
}

// InsertIfAbsent stores the mapping unless the code is already taken.
func (s *Storage) InsertIfAbsent(ctx context.Context, code, originalURL string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.urlMap[code]; exists {
		return storage.ErrCodeExists
	}

	s.urlMap[code] = originalURL
	return nil
}

// Get retrieves the original URL for a given short code.
func (s *Storage) Get(ctx context.Context, code string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	originalURL, found := s.urlMap[code]
	if !found {
		return "", storage.ErrNotFound
	}

	return originalURL, nil
}

// Ping always succeeds for the in-memory backend.
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored mappings.
func (s *Storage) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.urlMap)
}
