// README: In-process payment store; settlement piggybacks on the ride store's
// conditional Complete so the pair-plus-ride write stays one atomic unit.
package payment

import (
	"context"
	"sync"
	"time"

	"cabcab/internal/modules/ride"
	"cabcab/internal/types"
)

type MemoryStore struct {
	mu       sync.RWMutex
	payments map[types.ID]Payment
	rides    *ride.MemoryStore
}

func NewMemoryStore(rides *ride.MemoryStore) *MemoryStore {
	return &MemoryStore{
		payments: make(map[types.ID]Payment),
		rides:    rides,
	}
}

func (s *MemoryStore) CreateSettlement(ctx context.Context, rideID types.ID, actualFare types.Money, endTime time.Time, payments []*Payment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.rides.Complete(ctx, rideID, payments[0].ID, actualFare, endTime)
	if err != nil || !ok {
		return false, err
	}
	for _, p := range payments {
		s.payments[p.ID] = *p
	}
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) GetByRide(_ context.Context, rideID types.ID) ([]*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Payment
	// Driver payment first, commission second, matching the postgres ordering.
	for _, commission := range []bool{false, true} {
		for _, p := range s.payments {
			if p.RideID == rideID && p.IsCommission == commission {
				p := p
				out = append(out, &p)
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) ListByRecipient(_ context.Context, recipientID types.ID) ([]*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Payment
	for _, p := range s.payments {
		if p.RecipientID == recipientID {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

func (s *MemoryStore) CommissionTotals(_ context.Context, adminID types.ID) (types.Money, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	var count int
	for _, p := range s.payments {
		if p.RecipientID == adminID && p.IsCommission {
			total += p.Amount.Amount
			count++
		}
	}
	return types.Cents(total), count, nil
}
