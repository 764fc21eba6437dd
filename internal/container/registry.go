package container

import (
	"slices"
	"sync"
)

// Entry is one registered instance.
type Entry struct {
	Key          any
	Instance     any
	Dependencies []any
	Seq          uint64
}

type Registry struct {
	mu      sync.RWMutex
	entries map[any]*Entry
	order   []any
	seq     uint64
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[any]*Entry),
	}
}

// Store registers instance under key unless key is taken, in which case the
// existing entry is returned and stored is false.
func (r *Registry) Store(key, instance any, dependencies []any) (entry *Entry, stored bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[key]; ok {
		return existing, false
	}

	r.seq++
	entry = &Entry{
		Key:          key,
		Instance:     instance,
		Dependencies: slices.Clone(dependencies),
		Seq:          r.seq,
	}
	r.entries[key] = entry
	r.order = append(r.order, key)
	return entry, true
}

func (r *Registry) Has(key any) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.entries[key]
	return exists
}

func (r *Registry) Get(key any) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[key]
	return entry, exists
}

func (r *Registry) GetInstance(key any) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[key]
	if !exists {
		return nil, false
	}
	return entry.Instance, true
}

// Remove deletes key and returns the entry that was stored.
func (r *Registry) Remove(key any) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[key]
	if !exists {
		return nil, false
	}
	delete(r.entries, key)
	r.order = slices.DeleteFunc(r.order, func(k any) bool { return k == key })
	return entry, true
}

// Keys returns registered keys in registration order.
func (r *Registry) Keys() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// Entries returns registered entries in registration order.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*Entry, 0, len(r.order))
	for _, key := range r.order {
		entries = append(entries, r.entries[key])
	}
	return entries
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[any]*Entry)
	r.order = nil
}
