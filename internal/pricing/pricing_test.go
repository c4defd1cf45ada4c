package pricing

import "testing"

func TestDeliveryChargeBoundary(t *testing.T) {
	tests := []struct {
		subtotal float64
		want     float64
	}{
		{998, 99},
		{999, 0},
		{1000, 0},
	}
	for _, tt := range tests {
		quote := Compute([]LineItem{{UnitPrice: tt.subtotal, Quantity: 1}}, 0)
		if quote.DeliveryCharges != tt.want {
			t.Fatalf("subtotal %v: expected delivery %v, got %v", tt.subtotal, tt.want, quote.DeliveryCharges)
		}
	}
}

func TestComputeNoCoupon(t *testing.T) {
	quote := Compute([]LineItem{{UnitPrice: 500, Quantity: 2}}, 0)

	if quote.Subtotal != 1000 {
		t.Fatalf("expected subtotal 1000, got %v", quote.Subtotal)
	}
	if quote.DeliveryCharges != 0 {
		t.Fatalf("expected free delivery, got %v", quote.DeliveryCharges)
	}
	if quote.GST != 180 {
		t.Fatalf("expected gst 180, got %v", quote.GST)
	}
	if quote.Total != 1180 {
		t.Fatalf("expected total 1180, got %v", quote.Total)
	}
}

func TestComputeWithFixedDiscount(t *testing.T) {
	quote := Compute([]LineItem{{UnitPrice: 500, Quantity: 2}}, 100)

	if quote.Discount != 100 {
		t.Fatalf("expected discount 100, got %v", quote.Discount)
	}
	if quote.GST != 162 {
		t.Fatalf("expected gst 162, got %v", quote.GST)
	}
	if quote.Total != 1062 {
		t.Fatalf("expected total 1062, got %v", quote.Total)
	}
}

func TestComputeClampsDiscount(t *testing.T) {
	quote := Compute([]LineItem{{UnitPrice: 50, Quantity: 1}}, 500)
	if quote.Discount != 50 {
		t.Fatalf("expected discount clamped to subtotal 50, got %v", quote.Discount)
	}
	if quote.Total != 99 {
		t.Fatalf("expected total 99 (delivery only), got %v", quote.Total)
	}

	quote = Compute([]LineItem{{UnitPrice: 50, Quantity: 1}}, -10)
	if quote.Discount != 0 {
		t.Fatalf("expected negative discount clamped to 0, got %v", quote.Discount)
	}
}

func TestComputeRoundsToTwoDecimals(t *testing.T) {
	// 333.33 * 0.18 = 59.9994, which must round half-up to 60.00.
	quote := Compute([]LineItem{{UnitPrice: 333.33, Quantity: 1}}, 0)
	if quote.GST != 60 {
		t.Fatalf("expected gst rounded to 60, got %v", quote.GST)
	}
	if quote.Total != 492.33 {
		t.Fatalf("expected total 492.33, got %v", quote.Total)
	}
}

func TestSubtotalSumsLines(t *testing.T) {
	items := []LineItem{
		{UnitPrice: 199.99, Quantity: 2},
		{UnitPrice: 49.5, Quantity: 3},
	}
	if got := Subtotal(items); got != 548.48 {
		t.Fatalf("expected subtotal 548.48, got %v", got)
	}
}
