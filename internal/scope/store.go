// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package scope

import "sync"

// Store is a scope-overlaid key-value store.
//
// Records are held per layer: one global map plus one map per named
// world. Get from a named scope falls back to the global layer exactly
// once when the named layer holds no record for the key; there is no
// deeper chain. Set and Delete only ever touch the addressed layer.
//
// Store is safe for concurrent use. The zero value is not ready;
// use NewStore.
type Store[T any] struct {
	mu     sync.RWMutex
	global map[string]T
	named  map[string]map[string]T // world -> key -> record
}

// NewStore creates an empty scoped store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		global: make(map[string]T),
		named:  make(map[string]map[string]T),
	}
}

// Get returns the record for key in sc, applying the overlay rule:
// a named scope with no record for key falls through to global.
func (s *Store[T]) Get(sc Scope, key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if world, ok := sc.World(); ok {
		if layer, ok := s.named[world]; ok {
			if v, ok := layer[key]; ok {
				return v, true
			}
		}
	}
	v, ok := s.global[key]
	return v, ok
}

// GetExact returns the record for key in exactly sc, with no fallback.
func (s *Store[T]) GetExact(sc Scope, key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layer := s.layer(sc)
	if layer == nil {
		var zero T
		return zero, false
	}
	v, ok := layer[key]
	return v, ok
}

// Set writes the record for key into the layer addressed by sc.
func (s *Store[T]) Set(sc Scope, key string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutableLayer(sc)[key] = v
}

// Delete removes the record for key from the layer addressed by sc
// and reports whether a record was present.
func (s *Store[T]) Delete(sc Scope, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	layer := s.layer(sc)
	if layer == nil {
		return false
	}
	_, ok := layer[key]
	delete(layer, key)
	return ok
}

// Update applies fn to the record for key in the layer addressed by sc,
// holding the store lock for the duration. fn receives the current
// record (zero value if absent) and its presence flag, and returns the
// new record and whether to keep it; keep=false deletes the record so
// that overlay fallback resumes for named scopes.
func (s *Store[T]) Update(sc Scope, key string, fn func(cur T, ok bool) (T, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	layer := s.mutableLayer(sc)
	cur, ok := layer[key]
	next, keep := fn(cur, ok)
	if keep {
		layer[key] = next
		return
	}
	delete(layer, key)
}

// Keys returns every key present in exactly the layer addressed by sc.
func (s *Store[T]) Keys(sc Scope) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layer := s.layer(sc)
	keys := make([]string, 0, len(layer))
	for k := range layer {
		keys = append(keys, k)
	}
	return keys
}

// layer returns the map backing sc for reads, or nil if the named
// layer was never written.
func (s *Store[T]) layer(sc Scope) map[string]T {
	if world, ok := sc.World(); ok {
		return s.named[world]
	}
	return s.global
}

// mutableLayer returns the map backing sc, creating the named layer
// on first write. Callers must hold mu.
func (s *Store[T]) mutableLayer(sc Scope) map[string]T {
	world, ok := sc.World()
	if !ok {
		return s.global
	}
	layer, ok := s.named[world]
	if !ok {
		layer = make(map[string]T)
		s.named[world] = layer
	}
	return layer
}
