package pagecache

import (
	"context"
	"sync"
)

// Registry is the process-wide, compute-once gate in front of the Store.
// Each namespace is loaded at most once per Registry lifetime and never
// invalidated; tests needing a fresh cache construct a fresh Registry.
type Registry struct {
	store *Store

	mu      sync.Mutex
	entries map[string]*regEntry
}

type regEntry struct {
	once  sync.Once
	pages map[string]string
	err   error
}

// NewRegistry creates a Registry backed by the given store.
func NewRegistry(store *Store) *Registry {
	return &Registry{store: store, entries: make(map[string]*regEntry)}
}

// Pages returns the memoized mapping for a namespace, loading it from the
// store on first use. A load failure is memoized too: a namespace whose
// cache is missing stays missing for the registry's lifetime.
func (r *Registry) Pages(ctx context.Context, ns string) (map[string]string, error) {
	e := r.entry(ns)
	e.once.Do(func() {
		e.pages, e.err = r.store.Load(ctx, ns)
	})
	return e.pages, e.err
}

// Seed injects a prebuilt mapping for a namespace, bypassing the store. A
// namespace that is already loaded keeps its current mapping.
func (r *Registry) Seed(ns string, pages map[string]string) {
	e := r.entry(ns)
	e.once.Do(func() {
		e.pages = pages
	})
}

func (r *Registry) entry(ns string) *regEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[ns]
	if !ok {
		e = &regEntry{}
		r.entries[ns] = e
	}
	return e
}
