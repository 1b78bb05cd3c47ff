// Package handoff moves per-session resources between the two execution
// contexts of the engine. Resources are created once by registered creators and
// then published into a main-context Store and a render-context Store; a
// single-slot Mailbox carries each frame from one context to the other.
package handoff

import (
	"reflect"
	"sync"
)

// Store is a type-keyed resource store owned by one execution context.
// It holds at most one value per type.
type Store struct {
	name  string
	mu    sync.RWMutex
	items map[reflect.Type]any
}

// NewStore creates an empty store.
//
// Parameters:
//   - name: the context name used in logs
//
// Returns:
//   - *Store: the store
func NewStore(name string) *Store {
	return &Store{name: name, items: make(map[reflect.Type]any)}
}

// Name returns the context name of the store.
func (s *Store) Name() string { return s.name }

// Len returns how many resources the store holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Insert stores v under its type, replacing a previous value of the same type.
func Insert[T any](s *Store, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[reflect.TypeFor[T]()] = v
}

// Get returns the value stored for T.
//
// Returns:
//   - T: the value, the zero value if absent
//   - bool: whether a value was stored
func Get[T any](s *Store) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Has reports whether a value of type T is stored.
func Has[T any](s *Store) bool {
	_, ok := Get[T](s)
	return ok
}

// Remove deletes the value stored for T.
//
// Returns:
//   - bool: false if nothing was stored
func Remove[T any](s *Store) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := reflect.TypeFor[T]()
	if _, ok := s.items[k]; !ok {
		return false
	}
	delete(s.items, k)
	return true
}
