// README: In-process ride store; preconditions checked under one lock.
package ride

import (
	"context"
	"sort"
	"sync"
	"time"

	"cabcab/internal/types"
)

type MemoryStore struct {
	mu     sync.RWMutex
	rides  map[types.ID]Ride
	events []Event
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rides: make(map[types.ID]Ride)}
}

func (s *MemoryStore) Create(_ context.Context, r *Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rides[r.ID] = *r
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := r
	return &out, nil
}

func (s *MemoryStore) ListByStatus(_ context.Context, status Status) ([]*Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Ride
	for _, r := range s.rides {
		if r.Status == status {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RequestTime.Before(out[j].RequestTime)
	})
	return out, nil
}

func (s *MemoryStore) ListByRider(_ context.Context, riderID types.ID, status Status) ([]*Ride, error) {
	return s.listOwned(func(r Ride) bool { return r.RiderID == riderID }, status)
}

func (s *MemoryStore) ListByDriver(_ context.Context, driverID types.ID, status Status) ([]*Ride, error) {
	return s.listOwned(func(r Ride) bool {
		return r.DriverID != nil && *r.DriverID == driverID
	}, status)
}

func (s *MemoryStore) listOwned(owns func(Ride) bool, status Status) ([]*Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Ride
	for _, r := range s.rides {
		if !owns(r) {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		r := r
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RequestTime.After(out[j].RequestTime)
	})
	return out, nil
}

func (s *MemoryStore) AssignDriver(_ context.Context, id, driverID types.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok || r.Status != StatusRequested || r.DriverID != nil {
		return false, nil
	}
	d := driverID
	r.DriverID = &d
	r.Status = StatusDriverAssigned
	s.rides[id] = r
	return true, nil
}

func (s *MemoryStore) Cancel(_ context.Context, id types.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok || (r.Status != StatusRequested && r.Status != StatusDriverAssigned) {
		return false, nil
	}
	r.Status = StatusCancelled
	s.rides[id] = r
	return true, nil
}

func (s *MemoryStore) Start(_ context.Context, id, driverID types.ID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok || r.Status != StatusDriverAssigned || r.DriverID == nil || *r.DriverID != driverID {
		return false, nil
	}
	t := at
	r.Status = StatusInProgress
	r.StartTime = &t
	s.rides[id] = r
	return true, nil
}

func (s *MemoryStore) SetRating(_ context.Context, id types.ID, rating int, feedback string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok || r.Status != StatusCompleted || r.Rating != nil {
		return false, nil
	}
	rt := rating
	fb := feedback
	r.Rating = &rt
	r.Feedback = &fb
	s.rides[id] = r
	return true, nil
}

// Complete finalises a ride as part of settlement: it succeeds only while the
// ride is IN_PROGRESS with no payment attached. The payment memory store
// calls this under its own settlement lock.
func (s *MemoryStore) Complete(_ context.Context, id, paymentID types.ID, actualFare types.Money, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok || r.Status != StatusInProgress || r.PaymentID != nil {
		return false, nil
	}
	p := paymentID
	f := actualFare
	t := at
	r.Status = StatusCompleted
	r.PaymentID = &p
	r.ActualFare = &f
	r.EndTime = &t
	s.rides[id] = r
	return true, nil
}

func (s *MemoryStore) AppendEvent(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.events = append(s.events, *e)
	return nil
}

// Events returns a copy of the audit log; used by tests.
func (s *MemoryStore) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
