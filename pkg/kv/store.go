// Package kv provides a generic map guarded by a read-write mutex.
package kv

import "sync"

// Store is a concurrency-safe map from K to V. The zero value is not usable;
// create one with New.
type Store[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// New creates an empty store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{data: make(map[K]V)}
}

// Get returns the value at key and whether it was present.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores value at key.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Update replaces the value at key with fn applied to the current value and
// returns the result. fn receives the zero value and false when key is
// absent. It runs under the write lock and must not call back into the store.
func (s *Store[K, V]) Update(key K, fn func(V, bool) V) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.data[key]
	next := fn(cur, ok)
	s.data[key] = next
	return next
}

// Keys returns the keys in unspecified order.
func (s *Store[K, V]) Keys() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]K, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
