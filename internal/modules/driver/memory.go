// README: In-process driver profile store.
package driver

import (
	"context"
	"math"
	"sync"

	"cabcab/internal/types"
)

type MemoryStore struct {
	mu      sync.RWMutex
	drivers map[types.ID]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drivers: make(map[types.ID]Profile)}
}

// Put seeds or replaces a profile.
func (s *MemoryStore) Put(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[p.ID] = p
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) ApplyRating(_ context.Context, id types.ID, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.drivers[id]
	if !ok {
		return ErrNotFound
	}
	total := p.Rating*float64(p.RatingCount) + float64(rating)
	p.RatingCount++
	p.Rating = math.Round(total/float64(p.RatingCount)*100) / 100
	s.drivers[id] = p
	return nil
}

func (s *MemoryStore) SetAvailability(_ context.Context, id types.ID, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.drivers[id]
	if !ok {
		return ErrNotFound
	}
	p.Available = available
	s.drivers[id] = p
	return nil
}
