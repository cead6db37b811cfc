// Package storage - MemoryStore is a thread-safe in-memory Store for testing
// and small datasets.
package storage

import (
	"sync"
)

// MemoryStore is a map-backed implementation of Store.
//
// It's useful for:
//   - Unit testing (no disk I/O)
//   - Small datasets that fit in RAM
//
// Writes under the mutex are trivially atomic, so the PutBatch contract
// holds by construction. Values are copied on the way in and out to prevent
// external mutation of stored bytes.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

// Put stores a single key-value pair.
func (s *MemoryStore) Put(key, value []byte) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	s.data[string(key)] = storedBytes(value)
	return nil
}

// PutBatch stores every pair in items under a single lock acquisition.
func (s *MemoryStore) PutBatch(items map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	// Validate before touching the map so a bad key can't leave a
	// half-applied batch behind.
	for k := range items {
		if len(k) == 0 {
			return ErrInvalidKey
		}
	}
	for k, v := range items {
		s.data[k] = storedBytes(v)
	}
	return nil
}

// Get retrieves the value for key, or (nil, nil) if absent.
func (s *MemoryStore) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	value, ok := s.data[string(key)]
	if !ok {
		return nil, nil
	}
	return copyBytes(value), nil
}

// GetBatch retrieves multiple keys at once. Absent keys map to a nil value.
func (s *MemoryStore) GetBatch(keys [][]byte) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	results := make(map[string][]byte, len(keys))
	for _, key := range keys {
		value, ok := s.data[string(key)]
		if !ok {
			results[string(key)] = nil
			continue
		}
		results[string(key)] = copyBytes(value)
	}
	return results, nil
}

// Close marks the store closed. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Len returns the number of stored keys. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// storedBytes copies a value for insertion, normalizing nil to an empty
// slice so a present key is never read back as (nil, nil).
func storedBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return copyBytes(b)
}

// Verify MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
