// Package flyweight provides an identity registry that guarantees a single
// canonical instance per logical entity.
//
// Entities are keyed by a kind tag plus a hash of a statically declared
// subset of their fields (a user's name, a venue's URL). Constructing the
// same logical entity twice, from any two API responses, yields the same
// pointer. Entries are never evicted: the registry is a library-lifetime
// cache and its growth is an accepted trade-off.
//
// A Registry is an explicit, injectable object rather than package-level
// state, so tests and independent clients get isolated instances.
package flyweight

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// MissingFieldError reports an identity field that was absent or empty at
// construction time. Building an entity without enough information to
// identify it is a programmer error, not missing data to paper over.
type MissingFieldError struct {
	Kind  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("flyweight: %s requires %q for identity", e.Kind, e.Field)
}

// Key identifies one logical entity: a kind tag plus a digest of the
// entity's identity fields.
type Key struct {
	kind string
	sum  uint64
}

// Kind returns the key's entity kind tag.
func (k Key) Kind() string { return k.kind }

// NewKey builds a Key for the given kind from the declared identity fields.
// Every field must have a non-empty value; a missing field yields a
// *MissingFieldError.
func NewKey(kind string, fields map[string]string) (Key, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	d := xxhash.New()
	for _, name := range names {
		value := fields[name]
		if value == "" {
			return Key{}, &MissingFieldError{Kind: kind, Field: name}
		}
		// NUL separators keep ("ab","c") and ("a","bc") distinct.
		_, _ = d.WriteString(name)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(value)
		_, _ = d.Write([]byte{0})
	}
	return Key{kind: kind, sum: d.Sum64()}, nil
}

// Registry maps identity keys to canonical entity instances.
type Registry struct {
	mu      sync.RWMutex
	entries map[Key]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Key]any)}
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// lookup returns the registered instance for key, if any.
func (r *Registry) lookup(key Key) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// register stores candidate under key unless another goroutine got there
// first, and returns whichever instance is canonical afterwards.
func (r *Registry) register(key Key, candidate any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[key]; ok {
		return existing
	}
	r.entries[key] = candidate
	return candidate
}

// GetOrCreate returns the canonical instance for key, invoking build to
// construct a fresh one only when no instance is registered yet. The build
// function runs outside the registry lock, so it may itself construct
// related entities through the same registry.
func GetOrCreate[T any](r *Registry, key Key, build func() T) T {
	if v, ok := r.lookup(key); ok {
		return v.(T)
	}
	candidate := build()
	return r.register(key, candidate).(T)
}
