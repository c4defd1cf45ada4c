// Package pricing derives the monetary breakdown of an order from its
// resolved line items. All arithmetic runs on decimals and results are
// rounded half-up to two decimal places, so fractional currency units
// never leak into an order document.
package pricing

import "github.com/shopspring/decimal"

const (
	// GSTRate is the flat tax rate applied to the discounted subtotal.
	GSTRate = 0.18
	// FreeDeliveryThreshold is the subtotal at which delivery becomes free.
	FreeDeliveryThreshold = 999
	// DeliveryCharge is the flat fee below the free-delivery threshold.
	DeliveryCharge = 99
)

// LineItem carries a catalog-resolved unit price and a quantity. Prices
// must come from the product store, never from the client.
type LineItem struct {
	UnitPrice float64
	Quantity  int
}

// Quote is the full monetary breakdown of an order.
type Quote struct {
	Subtotal        float64
	Discount        float64
	GST             float64
	DeliveryCharges float64
	Total           float64
}

var (
	gstRate   = decimal.NewFromFloat(GSTRate)
	threshold = decimal.NewFromInt(FreeDeliveryThreshold)
	flatFee   = decimal.NewFromInt(DeliveryCharge)
)

// Subtotal sums unit price times quantity over all line items.
func Subtotal(items []LineItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(
			decimal.NewFromFloat(item.UnitPrice).
				Mul(decimal.NewFromInt(int64(item.Quantity))),
		)
	}
	value, _ := sum.Round(2).Float64()
	return value
}

// Compute builds a Quote from the line items and an already-validated
// discount amount. It is deterministic and has no side effects.
func Compute(items []LineItem, discount float64) Quote {
	subtotal := decimal.NewFromFloat(Subtotal(items))
	disc := decimal.NewFromFloat(discount)

	if disc.GreaterThan(subtotal) {
		disc = subtotal
	}
	if disc.IsNegative() {
		disc = decimal.Zero
	}

	delivery := flatFee
	if subtotal.GreaterThanOrEqual(threshold) {
		delivery = decimal.Zero
	}

	afterDiscount := subtotal.Sub(disc)
	gst := afterDiscount.Mul(gstRate).Round(2)
	total := afterDiscount.Add(gst).Add(delivery).Round(2)

	return Quote{
		Subtotal:        roundedFloat(subtotal),
		Discount:        roundedFloat(disc),
		GST:             roundedFloat(gst),
		DeliveryCharges: roundedFloat(delivery),
		Total:           roundedFloat(total),
	}
}

func roundedFloat(d decimal.Decimal) float64 {
	value, _ := d.Round(2).Float64()
	return value
}
