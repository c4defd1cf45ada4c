package payment

import (
	"context"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/refund"
)

// StripeGateway charges through Stripe PaymentIntents, confirming
// immediately with redirects disabled, the same way the storefront's
// web client expects.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) Charge(ctx context.Context, amountMinor int64, currency, paymentMethodID string) (Charge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountMinor),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Println("[PAYMENT] [ERROR] stripe charge failed:", err)
		return Charge{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	return Charge{
		ID:   intent.ID,
		Paid: intent.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, chargeID string, amountMinor int64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(chargeID),
		Amount:        stripe.Int64(amountMinor),
	}
	params.Context = ctx

	if _, err := refund.New(params); err != nil {
		log.Println("[PAYMENT] [ERROR] stripe refund failed:", err)
		return err
	}
	return nil
}
