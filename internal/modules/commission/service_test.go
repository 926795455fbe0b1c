package commission

import (
	"context"
	"errors"
	"testing"

	"cabcab/internal/types"
)

type stubEarnings struct {
	total types.Money
	count int
}

func (s stubEarnings) CommissionTotals(context.Context, types.ID) (types.Money, int, error) {
	return s.total, s.count, nil
}

func TestSetValidatesPercentage(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil)
	for _, pct := range []float64{-0.01, -10, 50.01, 100} {
		_, err := svc.Set(context.Background(), SetCommand{AdminID: types.NewID(), Percentage: pct})
		if !errors.Is(err, ErrInvalidPercentage) {
			t.Errorf("percentage %v: err = %v, want ErrInvalidPercentage", pct, err)
		}
	}
	for _, pct := range []float64{0, 0.5, 15, 50} {
		if _, err := svc.Set(context.Background(), SetCommand{AdminID: types.NewID(), Percentage: pct}); err != nil {
			t.Errorf("percentage %v: unexpected error %v", pct, err)
		}
	}
}

func TestSetCreatesThenUpdates(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()
	adminID := types.NewID()
	methodID := types.NewID()

	created, err := svc.Set(ctx, SetCommand{AdminID: adminID, PaymentMethodID: methodID, Percentage: 10})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !created.Active {
		t.Errorf("new setting not active")
	}
	if created.Percentage != 10 {
		t.Errorf("percentage = %v, want 10", created.Percentage)
	}

	updated, err := svc.Set(ctx, SetCommand{AdminID: adminID, PaymentMethodID: methodID, Percentage: 15})
	if err != nil {
		t.Fatalf("second Set: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("update created a second setting")
	}
	if updated.Percentage != 15 {
		t.Errorf("percentage = %v, want 15", updated.Percentage)
	}

	active, err := store.GetActive(ctx)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if active.Percentage != 15 {
		t.Errorf("active percentage = %v, want 15", active.Percentage)
	}
}

func TestEnableDisable(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	ctx := context.Background()
	adminID := types.NewID()

	if _, err := svc.Set(ctx, SetCommand{AdminID: adminID, Percentage: 15}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	disabled, err := svc.Disable(ctx, adminID)
	if err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if disabled.Active {
		t.Errorf("setting still active after Disable")
	}
	if _, err := store.GetActive(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetActive err = %v after disable, want ErrNotFound", err)
	}

	enabled, err := svc.Enable(ctx, adminID)
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if !enabled.Active {
		t.Errorf("setting not active after Enable")
	}
	if _, err := store.GetActive(ctx); err != nil {
		t.Errorf("GetActive after enable: %v", err)
	}
}

func TestEnableUnknownAdmin(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil)
	if _, err := svc.Enable(context.Background(), types.NewID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetWithStatistics(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, stubEarnings{total: types.Cents(1800), count: 3})
	ctx := context.Background()
	adminID := types.NewID()

	if _, err := svc.Set(ctx, SetCommand{AdminID: adminID, Percentage: 15}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	setting, stats, err := svc.Get(ctx, adminID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if setting.AdminID != adminID {
		t.Errorf("wrong setting returned")
	}
	if stats.TotalEarned.Amount != 1800 || stats.RideCount != 3 {
		t.Errorf("stats = %+v, want 1800 cents over 3 rides", stats)
	}
}
