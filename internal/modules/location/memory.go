// README: In-process location store for local runs and tests.
package location

import (
	"context"
	"sync"

	"cabcab/internal/types"
)

type MemoryStore struct {
	mu        sync.RWMutex
	locations map[types.ID]Location
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{locations: make(map[types.ID]Location)}
}

func (s *MemoryStore) Create(_ context.Context, l *Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = *l
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locations[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := l
	return &out, nil
}

// Delete removes a snapshot; used by tests to simulate unresolvable locations.
func (s *MemoryStore) Delete(_ context.Context, id types.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locations, id)
}
