// Package payment adapts the external payment processor used for pledge
// settlement.
package payment

import (
	"context"
	"fmt"

	"bvest/internal/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

var minorUnits = decimal.NewFromInt(100)

// StripeProcessor settles pledges through Stripe payment intents.
// Completion is asynchronous: Stripe's webhook drives the settlement
// callback; this adapter only dispatches the request.
type StripeProcessor struct {
	currency string
}

// NewStripeProcessor configures the Stripe client from the environment.
func NewStripeProcessor() *StripeProcessor {
	stripe.Key = config.GetEnv("STRIPE_SECRET_KEY", "")
	return &StripeProcessor{
		currency: config.GetEnv("SETTLEMENT_CURRENCY", "usd"),
	}
}

func (p *StripeProcessor) Settle(ctx context.Context, pledgeID uuid.UUID, amount decimal.Decimal, instrument string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount.Mul(minorUnits).IntPart()),
		Currency: stripe.String(p.currency),
	}
	params.Context = ctx
	// One settlement attempt per pledge; retries reuse the intent.
	params.IdempotencyKey = stripe.String("pledge-settle-" + pledgeID.String())
	params.AddMetadata("pledge_id", pledgeID.String())
	params.AddMetadata("instrument", instrument)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe settlement dispatch failed: %w", err)
	}
	return intent.ID, nil
}
