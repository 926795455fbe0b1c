// README: Commission administration (set, enable, disable, inspect).
package commission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cabcab/internal/types"
)

var ErrInvalidPercentage = errors.New("commission percentage must be between 0 and 50")

// EarningsSource reports totals over commission payments; implemented by the
// payment store.
type EarningsSource interface {
	CommissionTotals(ctx context.Context, adminID types.ID) (types.Money, int, error)
}

type Service struct {
	store    Store
	earnings EarningsSource
}

func NewService(store Store, earnings EarningsSource) *Service {
	return &Service{store: store, earnings: earnings}
}

type SetCommand struct {
	AdminID         types.ID
	PaymentMethodID types.ID
	Percentage      float64
}

// Set creates or updates the admin's commission setting. A newly created
// setting starts active, matching the original platform behaviour.
func (s *Service) Set(ctx context.Context, cmd SetCommand) (*Setting, error) {
	if cmd.Percentage < 0 || cmd.Percentage > 50 {
		return nil, fmt.Errorf("%w: got %.2f", ErrInvalidPercentage, cmd.Percentage)
	}

	now := time.Now().UTC()
	existing, err := s.store.GetByAdmin(ctx, cmd.AdminID)
	switch {
	case err == nil:
		existing.PaymentMethodID = cmd.PaymentMethodID
		existing.Percentage = cmd.Percentage
		existing.UpdatedAt = now
		if err := s.store.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, ErrNotFound):
		setting := &Setting{
			ID:              types.NewID(),
			AdminID:         cmd.AdminID,
			PaymentMethodID: cmd.PaymentMethodID,
			Percentage:      cmd.Percentage,
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.store.Create(ctx, setting); err != nil {
			return nil, err
		}
		return setting, nil
	default:
		return nil, err
	}
}

func (s *Service) Enable(ctx context.Context, adminID types.ID) (*Setting, error) {
	return s.setActive(ctx, adminID, true)
}

func (s *Service) Disable(ctx context.Context, adminID types.ID) (*Setting, error) {
	return s.setActive(ctx, adminID, false)
}

func (s *Service) setActive(ctx context.Context, adminID types.ID, active bool) (*Setting, error) {
	setting, err := s.store.GetByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}
	setting.Active = active
	setting.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// Get returns the admin's setting together with earnings statistics.
func (s *Service) Get(ctx context.Context, adminID types.ID) (*Setting, *Statistics, error) {
	setting, err := s.store.GetByAdmin(ctx, adminID)
	if err != nil {
		return nil, nil, err
	}
	stats := &Statistics{TotalEarned: types.Cents(0)}
	if s.earnings != nil {
		total, count, err := s.earnings.CommissionTotals(ctx, adminID)
		if err != nil {
			return nil, nil, err
		}
		stats.TotalEarned = total
		stats.RideCount = count
	}
	return setting, stats, nil
}
