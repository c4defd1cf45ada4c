package models

import (
	"errors"
	"testing"
	"time"
)

func activeCoupon() Coupon {
	now := time.Now()
	return Coupon{
		Code:          "SAVE10",
		DiscountType:  DiscountTypePercentage,
		DiscountValue: 10,
		ValidFrom:     now.Add(-time.Hour),
		ValidUntil:    now.Add(time.Hour),
		IsActive:      true,
	}
}

func TestIsValidAtWindow(t *testing.T) {
	coupon := activeCoupon()
	now := time.Now()

	if !coupon.IsValidAt(now) {
		t.Fatal("expected coupon inside window to be valid")
	}
	if coupon.IsValidAt(coupon.ValidFrom.Add(-time.Minute)) {
		t.Fatal("expected coupon before window to be invalid")
	}
	if coupon.IsValidAt(coupon.ValidUntil.Add(time.Minute)) {
		t.Fatal("expected coupon after window to be invalid")
	}

	coupon.IsActive = false
	if coupon.IsValidAt(now) {
		t.Fatal("expected inactive coupon to be invalid")
	}
}

func TestIsValidAtUsageLimit(t *testing.T) {
	coupon := activeCoupon()
	limit := 3
	coupon.UsageLimit = &limit
	now := time.Now()

	// The third use is still allowed; the would-be fourth is not.
	coupon.UsedCount = 2
	if !coupon.IsValidAt(now) {
		t.Fatal("expected coupon with usedCount below limit to be valid")
	}
	coupon.UsedCount = 3
	if coupon.IsValidAt(now) {
		t.Fatal("expected coupon at usage limit to be invalid")
	}
}

func TestIsValidAtUnlimitedUsage(t *testing.T) {
	coupon := activeCoupon()
	coupon.UsedCount = 100000
	if !coupon.IsValidAt(time.Now()) {
		t.Fatal("expected coupon without usage limit to stay valid")
	}
}

func TestDiscountForPercentage(t *testing.T) {
	coupon := activeCoupon()

	discount, err := coupon.DiscountFor(1000, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discount != 100 {
		t.Fatalf("expected 10%% of 1000 = 100, got %v", discount)
	}
}

func TestDiscountForPercentageCap(t *testing.T) {
	coupon := activeCoupon()
	coupon.DiscountValue = 50
	coupon.MaxDiscount = 150

	discount, err := coupon.DiscountFor(1000, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discount != 150 {
		t.Fatalf("expected discount capped at 150, got %v", discount)
	}
}

func TestDiscountForFixed(t *testing.T) {
	coupon := activeCoupon()
	coupon.DiscountType = DiscountTypeFixed
	coupon.DiscountValue = 100
	coupon.MinOrderValue = 500

	discount, err := coupon.DiscountFor(1000, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discount != 100 {
		t.Fatalf("expected fixed discount 100, got %v", discount)
	}
}

func TestDiscountForNeverExceedsOrderAmount(t *testing.T) {
	coupon := activeCoupon()
	coupon.DiscountType = DiscountTypeFixed
	coupon.DiscountValue = 500

	discount, err := coupon.DiscountFor(200, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if discount != 200 {
		t.Fatalf("expected discount clamped to order amount 200, got %v", discount)
	}
	if discount < 0 {
		t.Fatalf("discount must never be negative, got %v", discount)
	}
}

func TestDiscountForMinOrderNotMet(t *testing.T) {
	coupon := activeCoupon()
	coupon.MinOrderValue = 500

	_, err := coupon.DiscountFor(499, time.Now())
	var minOrderErr MinOrderError
	if !errors.As(err, &minOrderErr) {
		t.Fatalf("expected MinOrderError, got %v", err)
	}
	if minOrderErr.MinOrderValue != 500 {
		t.Fatalf("expected min order 500 in error, got %v", minOrderErr.MinOrderValue)
	}
}

func TestDiscountForInvalidCoupon(t *testing.T) {
	coupon := activeCoupon()
	coupon.IsActive = false

	_, err := coupon.DiscountFor(1000, time.Now())
	if !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected ErrCouponInvalid, got %v", err)
	}
}
