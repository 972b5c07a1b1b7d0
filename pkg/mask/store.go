package mask

import (
	"fmt"
	"sort"
	"sync"
)

// Store holds precomputed expression masks keyed by base mesh name.
//
// Names are matched exactly and case-sensitively; callers that derive names
// from scene objects must normalize them before calling Lookup. Each Store is
// an independent instance, so several sessions can keep their own.
type Store struct {
	mu    sync.RWMutex
	masks map[string]Weights
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{masks: make(map[string]Weights)}
}

// Put registers w under name, replacing any previous mask. The weights are
// copied.
func (s *Store) Put(name string, w Weights) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masks[name] = w.Clone()
}

// Lookup returns a copy of the mask registered under name.
func (s *Store) Lookup(name string) (Weights, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.masks[name]
	if !ok {
		return nil, fmt.Errorf("%w: no mask for %q", ErrNotFound, name)
	}
	return w.Clone(), nil
}

// Delete removes the mask registered under name.
// It reports whether a mask was removed.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.masks[name]
	delete(s.masks, name)
	return ok
}

// Names returns the registered mask names in ascending order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.masks))
	for name := range s.masks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered masks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.masks)
}

// Clone returns an independent store with the same masks.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := &Store{masks: make(map[string]Weights, len(s.masks))}
	for name, w := range s.masks {
		out.masks[name] = w.Clone()
	}
	return out
}
