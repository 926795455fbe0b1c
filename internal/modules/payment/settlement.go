// README: Settlement engine: splits a completed ride's fare per the active
// commission configuration and completes the ride in the same atomic unit.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"cabcab/internal/events"
	"cabcab/internal/modules/commission"
	"cabcab/internal/modules/ride"
	"cabcab/internal/types"
)

var ErrInvalidTransition = errors.New("ride cannot be settled")

// RideSource is the slice of the ride store settlement needs.
type RideSource interface {
	Get(ctx context.Context, id types.ID) (*ride.Ride, error)
}

// CommissionSource yields the commission setting active right now; settlement
// snapshots it, so later changes never alter past settlements.
type CommissionSource interface {
	GetActive(ctx context.Context) (*commission.Setting, error)
}

type SettlementEngine struct {
	store      Store
	rides      RideSource
	commission CommissionSource
	processor  Processor
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewSettlementEngine(
	store Store,
	rides RideSource,
	commissionSrc CommissionSource,
	processor Processor,
	publisher events.Publisher,
	logger *slog.Logger,
) *SettlementEngine {
	if processor == nil {
		processor = OfflineProcessor{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SettlementEngine{
		store:      store,
		rides:      rides,
		commission: commissionSrc,
		processor:  processor,
		publisher:  publisher,
		logger:     logger,
	}
}

type SettleCommand struct {
	RideID types.ID
	// ActualFare defaults to the ride's estimate when zero.
	ActualFare types.Money
	// PayerMethodID is the passenger's payment method handed to the charge
	// processor; optional for offline settlement.
	PayerMethodID types.ID
}

// Settle finalises payment for a ride exactly once. Calling it again for the
// same ride returns the original settlement unchanged. If anything fails
// before the atomic write commits, the ride stays IN_PROGRESS and Settle can
// be retried.
func (e *SettlementEngine) Settle(ctx context.Context, cmd SettleCommand) (*Settlement, error) {
	r, err := e.rides.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if r.PaymentID != nil {
		return e.existingSettlement(ctx, r)
	}
	if r.Status != ride.StatusInProgress {
		return nil, fmt.Errorf("%w: cannot settle ride with status %s", ErrInvalidTransition, r.Status)
	}
	if r.DriverID == nil {
		return nil, fmt.Errorf("%w: ride has no assigned driver", ErrInvalidTransition)
	}

	actualFare := cmd.ActualFare
	if actualFare.IsZero() {
		actualFare = r.EstimatedFare
	}

	setting, err := e.commission.GetActive(ctx)
	if err != nil && !errors.Is(err, commission.ErrNotFound) {
		return nil, err
	}

	// The charge key is derived from the ride so concurrent or retried Settle
	// calls present the same key and the processor never charges twice.
	txnID, err := e.processor.Charge(ctx, actualFare, cmd.PayerMethodID, "settle_"+string(r.ID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := buildSettlement(r, actualFare, setting, txnID, cmd.PayerMethodID, now)

	payments := []*Payment{result.Driver}
	if result.Commission != nil {
		payments = append(payments, result.Commission)
	}

	ok, err := e.store.CreateSettlement(ctx, r.ID, actualFare, now, payments)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the settlement race or the ride moved; if a concurrent Settle
		// won, return its result unchanged.
		current, gerr := e.rides.Get(ctx, cmd.RideID)
		if gerr != nil {
			return nil, gerr
		}
		if current.PaymentID != nil {
			return e.existingSettlement(ctx, current)
		}
		return nil, fmt.Errorf("%w: cannot settle ride with status %s", ErrInvalidTransition, current.Status)
	}

	if err := e.publisher.Publish(ctx, events.RideEvent{
		RideID:     string(r.ID),
		FromStatus: string(ride.StatusInProgress),
		ToStatus:   string(ride.StatusCompleted),
		ActorType:  "system",
		OccurredAt: now,
	}); err != nil {
		e.logger.Warn("ride event publish failed", "ride_id", r.ID, "error", err)
	}

	return result, nil
}

// GetByRide returns the settlement previously created for a ride.
func (e *SettlementEngine) GetByRide(ctx context.Context, rideID types.ID) (*Settlement, error) {
	r, err := e.rides.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.PaymentID == nil {
		return nil, fmt.Errorf("%w: ride %s is not settled", ErrNotFound, rideID)
	}
	s, err := e.existingSettlement(ctx, r)
	if err != nil {
		return nil, err
	}
	s.AlreadySettled = false
	return s, nil
}

// ListEarnings returns a recipient's payments newest-first.
func (e *SettlementEngine) ListEarnings(ctx context.Context, recipientID types.ID) ([]*Payment, error) {
	return e.store.ListByRecipient(ctx, recipientID)
}

func (e *SettlementEngine) existingSettlement(ctx context.Context, r *ride.Ride) (*Settlement, error) {
	payments, err := e.store.GetByRide(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	out := &Settlement{AlreadySettled: true}
	for _, p := range payments {
		if p.IsCommission {
			out.Commission = p
		} else {
			out.Driver = p
		}
	}
	if out.Driver == nil {
		return nil, fmt.Errorf("%w: settlement records missing for ride %s", ErrNotFound, r.ID)
	}
	return out, nil
}

// buildSettlement constructs the payment pair for a fare. With an active p%
// setting the commission is round(fare x p/100) cents and the driver share is
// the exact remainder, so the two always sum to the fare.
func buildSettlement(r *ride.Ride, fare types.Money, setting *commission.Setting, txnID string, payerMethodID types.ID, now time.Time) *Settlement {
	driverPayment := &Payment{
		ID:              types.NewID(),
		RideID:          r.ID,
		PayerID:         r.RiderID,
		RecipientID:     *r.DriverID,
		PaymentMethodID: payerMethodID,
		Amount:          fare,
		Status:          StatusCompleted,
		TransactionID:   txnID,
		CreatedAt:       now,
	}
	if setting == nil || !setting.Active || setting.Percentage == 0 {
		return &Settlement{Driver: driverPayment}
	}

	commissionCents := int64(math.Round(float64(fare.Amount) * setting.Percentage / 100))
	driverPayment.Amount = types.Cents(fare.Amount - commissionCents)

	commissionPayment := &Payment{
		ID:                types.NewID(),
		RideID:            r.ID,
		PayerID:           r.RiderID,
		RecipientID:       setting.AdminID,
		PaymentMethodID:   setting.PaymentMethodID,
		Amount:            types.Cents(commissionCents),
		Status:            StatusCompleted,
		TransactionID:     "comm_" + txnID,
		IsCommission:      true,
		OriginalPaymentID: &driverPayment.ID,
		CreatedAt:         now,
	}
	return &Settlement{Driver: driverPayment, Commission: commissionPayment}
}
