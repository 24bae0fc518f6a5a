// Package assets shares loaded meshes and textures between the entities that
// use them. Resources are keyed by name and handed out as reference-counted
// handles; what happens when the last handle is released is an explicit
// eviction policy.
package assets

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when no loader can resolve a resource name.
var ErrNotFound = errors.New("asset not found")

// Policy decides what happens to a resource whose reference count drops to
// zero.
type Policy int

const (
	// KeepLoaded caches resources until Purge is called.
	KeepLoaded Policy = iota
	// EvictOnRelease drops a resource as soon as its last handle is released.
	EvictOnRelease
)

// LoadFunc loads the resource with the given name.
type LoadFunc[T any] func(name string) (T, error)

// Registry loads each named resource once and shares it.
type Registry[T any] struct {
	mu      sync.Mutex
	load    LoadFunc[T]
	policy  Policy
	entries map[string]*entry[T]

	// OnEvict, if set, is called with the name of every evicted resource.
	OnEvict func(name string)
}

type entry[T any] struct {
	value T
	refs  int
}

// Handle is one shared reference to a resource.
type Handle[T any] struct {
	reg      *Registry[T]
	name     string
	value    T
	released bool
}

// NewRegistry creates a registry using load to resolve names.
func NewRegistry[T any](load LoadFunc[T], policy Policy) *Registry[T] {
	return &Registry[T]{
		load:    load,
		policy:  policy,
		entries: make(map[string]*entry[T]),
	}
}

// Acquire returns a handle to the named resource, loading it on first use.
func (r *Registry[T]) Acquire(name string) (*Handle[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		v, err := r.load(name)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", name, err)
		}
		e = &entry[T]{value: v}
		r.entries[name] = e
	}
	e.refs++
	return &Handle[T]{reg: r, name: name, value: e.value}, nil
}

// Refs returns the number of live handles for name.
func (r *Registry[T]) Refs(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		return e.refs
	}
	return 0
}

// Loaded reports whether name is currently cached.
func (r *Registry[T]) Loaded(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	return ok
}

// Len returns the number of cached resources.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Purge evicts every resource with no live handles and returns how many were
// dropped.
func (r *Registry[T]) Purge() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for name, e := range r.entries {
		if e.refs == 0 {
			r.evict(name)
			n++
		}
	}
	return n
}

func (r *Registry[T]) release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok || e.refs == 0 {
		return
	}
	e.refs--
	if e.refs == 0 && r.policy == EvictOnRelease {
		r.evict(name)
	}
}

// evict must be called with r.mu held.
func (r *Registry[T]) evict(name string) {
	delete(r.entries, name)
	if r.OnEvict != nil {
		r.OnEvict(name)
	}
}

// Name returns the resource name.
func (h *Handle[T]) Name() string {
	return h.name
}

// Get returns the shared resource.
func (h *Handle[T]) Get() T {
	return h.value
}

// Release gives the reference back. Releasing twice is a no-op.
func (h *Handle[T]) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	h.reg.release(h.name)
}
