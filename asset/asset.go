// Package asset provides handle-indexed storage for shared, immutable values.
//
// A Handle is a small comparable value that names an entry in an Assets
// store. Entities hold handles, never the values themselves, so rebinding an
// entity to a different fragment is a handle swap and a stored value can be
// shared by any number of entities.
//
// The zero Handle is valid and resolves to nothing.
package asset

import (
	"fmt"
	"sync"
)

// Handle identifies a value of type T in an Assets store.
type Handle[T any] struct {
	id uint64
}

// HandleFromID builds a handle from a raw identifier.
// Used by hosts that keep their own asset storage behind Reader.
func HandleFromID[T any](id uint64) Handle[T] {
	return Handle[T]{id: id}
}

// ID returns the raw identifier. Zero for the default handle.
func (h Handle[T]) ID() uint64 { return h.id }

// IsZero reports whether h is the default handle.
func (h Handle[T]) IsZero() bool { return h.id == 0 }

// String implements fmt.Stringer.
func (h Handle[T]) String() string {
	if h.id == 0 {
		return "Handle(default)"
	}
	return fmt.Sprintf("Handle(%d)", h.id)
}

// Reader resolves handles to values. Pipeline stages only need this
// read-only view of a store.
type Reader[T any] interface {
	Get(h Handle[T]) (T, bool)
}

// Assets is a concurrency-safe handle-indexed store.
//
// Identifiers are allocated monotonically starting at 1 and never reused, so
// a handle to a removed value stays unresolved forever.
type Assets[T any] struct {
	mu     sync.RWMutex
	values map[uint64]T
	nextID uint64
}

// New creates an empty store.
func New[T any]() *Assets[T] {
	return &Assets[T]{values: make(map[uint64]T)}
}

// Add stores v and returns its handle.
func (a *Assets[T]) Add(v T) Handle[T] {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	a.values[a.nextID] = v
	return Handle[T]{id: a.nextID}
}

// Get returns the value for h. The second result is false when h is the
// default handle or the value was removed.
func (a *Assets[T]) Get(h Handle[T]) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.values[h.id]
	return v, ok
}

// GetMut runs fn on the stored value while holding the write lock.
// Returns false without calling fn when h does not resolve.
func (a *Assets[T]) GetMut(h Handle[T], fn func(*T)) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.values[h.id]
	if !ok {
		return false
	}
	fn(&v)
	a.values[h.id] = v
	return true
}

// Set replaces the value behind an existing handle.
// Returns false when h does not resolve.
func (a *Assets[T]) Set(h Handle[T], v T) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.values[h.id]; !ok {
		return false
	}
	a.values[h.id] = v
	return true
}

// Remove deletes the value behind h. Returns false if nothing was stored.
func (a *Assets[T]) Remove(h Handle[T]) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.values[h.id]; !ok {
		return false
	}
	delete(a.values, h.id)
	return true
}

// Contains reports whether h resolves.
func (a *Assets[T]) Contains(h Handle[T]) bool {
	_, ok := a.Get(h)
	return ok
}

// Len returns the number of stored values.
func (a *Assets[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.values)
}

var _ Reader[int] = (*Assets[int])(nil)
