// README: In-process commission setting store.
package commission

import (
	"context"
	"sync"

	"cabcab/internal/types"
)

type MemoryStore struct {
	mu       sync.RWMutex
	settings map[types.ID]Setting
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settings: make(map[types.ID]Setting)}
}

func (s *MemoryStore) GetActive(_ context.Context) (*Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Setting
	for _, c := range s.settings {
		if !c.Active {
			continue
		}
		c := c
		if latest == nil || c.UpdatedAt.After(latest.UpdatedAt) {
			latest = &c
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (s *MemoryStore) GetByAdmin(_ context.Context, adminID types.ID) (*Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.settings {
		if c.AdminID == adminID {
			out := c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, c *Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[c.ID] = *c
	return nil
}

func (s *MemoryStore) Update(_ context.Context, c *Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.settings[c.ID]; !ok {
		return ErrNotFound
	}
	s.settings[c.ID] = *c
	return nil
}
