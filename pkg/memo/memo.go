// Package memo provides per-instance memoization of expensive derived
// properties with explicit invalidation.
//
// Each entity carries a Store; Get computes a named property once and
// returns the stored value on every later read until the entity invalidates
// it after a mutation. Only successful computations are cached: a failed
// compute leaves no entry behind, so the next read retries.
package memo

import "sync"

// Store holds the cached property values of a single entity instance.
// The zero value is ready to use.
type Store struct {
	mu     sync.Mutex
	values map[string]any
}

// Get returns the cached value for name, invoking compute on the first read
// (or the first read after an invalidation) and storing its result.
func Get[T any](s *Store, name string, compute func() (T, error)) (T, error) {
	s.mu.Lock()
	if v, ok := s.values[name]; ok {
		s.mu.Unlock()
		return v.(T), nil
	}
	s.mu.Unlock()

	// Compute outside the lock: property computations may fetch pages over
	// the network and may read other properties of the same store.
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.values[name]; ok {
		return existing.(T), nil
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[name] = v
	return v, nil
}

// Invalidate clears the named properties so their next read recomputes.
// Unknown names are ignored.
func (s *Store) Invalidate(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		delete(s.values, name)
	}
}

// InvalidateAll clears every cached property.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = nil
}

// Cached reports whether a value is currently stored for name.
func (s *Store) Cached(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[name]
	return ok
}
