// README: Payment records emitted by settlement.
package payment

import (
	"time"

	"cabcab/internal/types"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Payment is one leg of a ride settlement: either the driver's share or the
// platform's commission skim of it.
type Payment struct {
	ID              types.ID    `json:"id"`
	RideID          types.ID    `json:"ride_id"`
	PayerID         types.ID    `json:"payer_id"`
	RecipientID     types.ID    `json:"recipient_id"`
	PaymentMethodID types.ID    `json:"payment_method_id,omitempty"`
	Amount          types.Money `json:"amount"`
	Status          Status      `json:"status"`
	TransactionID   string      `json:"transaction_id,omitempty"`
	IsCommission    bool        `json:"is_commission"`
	// OriginalPaymentID links a commission skim back to the driver payment
	// it was taken from.
	OriginalPaymentID *types.ID `json:"original_payment_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Settlement is the outcome of settling one ride: the driver payment and,
// when commission was active at settlement time, the commission payment.
type Settlement struct {
	Driver     *Payment `json:"driver_payment"`
	Commission *Payment `json:"commission_payment,omitempty"`
	// AlreadySettled is true when Settle found an earlier settlement and
	// returned it unchanged.
	AlreadySettled bool `json:"already_settled,omitempty"`
}
