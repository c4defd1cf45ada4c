// Package payment wraps the external card processor behind a small
// gateway interface so checkout never talks to Stripe directly.
package payment

import (
	"context"
	"errors"
	"math"
)

// ErrPaymentFailed is returned when the processor declines or errors.
// Checkout aborts without creating an order when it sees this.
var ErrPaymentFailed = errors.New("payment failed")

// Charge is the result of a successful authorization and capture.
type Charge struct {
	ID   string
	Paid bool
}

// Gateway authorizes, captures and refunds card payments. Amounts are in
// minor currency units (paise).
type Gateway interface {
	Charge(ctx context.Context, amountMinor int64, currency, paymentMethodID string) (Charge, error)
	Refund(ctx context.Context, chargeID string, amountMinor int64) error
}

// MinorUnits converts a major-unit amount to minor units, rounding to the
// nearest unit (500.5 rupees -> 50050 paise).
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
