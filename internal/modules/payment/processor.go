// README: Charge processors supplying settlement transaction ids.
package payment

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"cabcab/internal/types"
)

// Processor charges the payer and returns a transaction id. Settlement calls
// it before any record is written, so a processor failure leaves the ride
// untouched and retryable. The idempotency key is stable per ride: a retried
// or concurrent settlement presents the same key, and the processor must
// collapse such charges into one.
type Processor interface {
	Charge(ctx context.Context, amount types.Money, payerMethodID types.ID, idempotencyKey string) (string, error)
}

// StripeProcessor charges through Stripe PaymentIntents.
type StripeProcessor struct{}

func NewStripeProcessor(apiKey string) *StripeProcessor {
	stripe.Key = apiKey
	return &StripeProcessor{}
}

func (p *StripeProcessor) Charge(ctx context.Context, amount types.Money, payerMethodID types.ID, idempotencyKey string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount.Amount),
		Currency: stripe.String("usd"),
		Confirm:  stripe.Bool(true),
	}
	if payerMethodID != "" {
		params.PaymentMethod = stripe.String(string(payerMethodID))
	}
	if idempotencyKey != "" {
		params.IdempotencyKey = stripe.String(idempotencyKey)
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe charge: %w", err)
	}
	return pi.ID, nil
}

// OfflineProcessor issues synthetic transaction ids for deployments without a
// card processor (the platform's original cash-like flow). The transaction id
// derives from the idempotency key, so repeating a charge yields the same id.
type OfflineProcessor struct{}

func (OfflineProcessor) Charge(_ context.Context, _ types.Money, _ types.ID, idempotencyKey string) (string, error) {
	if idempotencyKey != "" {
		return "txn_" + idempotencyKey, nil
	}
	return "txn_" + string(types.NewID()), nil
}
