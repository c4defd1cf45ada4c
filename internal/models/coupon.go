package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// ErrCouponInvalid covers an inactive coupon, one outside its validity
// window, or one whose usage limit is exhausted.
var ErrCouponInvalid = errors.New("coupon is expired or not valid")

// MinOrderError is returned when the order amount is below the coupon's
// minimum order value.
type MinOrderError struct {
	MinOrderValue float64
}

func (e MinOrderError) Error() string {
	return fmt.Sprintf("minimum order value of ₹%v required", e.MinOrderValue)
}

type Coupon struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Code          string              `bson:"code" json:"code"`
	Description   string              `bson:"description" json:"description"`
	DiscountType  string              `bson:"discountType" json:"discountType"`
	DiscountValue float64             `bson:"discountValue" json:"discountValue"`
	MinOrderValue float64             `bson:"minOrderValue" json:"minOrderValue"`
	MaxDiscount   float64             `bson:"maxDiscount,omitempty" json:"maxDiscount,omitempty"`
	UsageLimit    *int                `bson:"usageLimit" json:"usageLimit"`
	UsedCount     int                 `bson:"usedCount" json:"usedCount"`
	ValidFrom     time.Time           `bson:"validFrom" json:"validFrom"`
	ValidUntil    time.Time           `bson:"validUntil" json:"validUntil"`
	IsActive      bool                `bson:"isActive" json:"isActive"`
	CreatedBy     *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsValidAt reports whether the coupon can be applied at the given instant:
// active, inside the validity window, and under its usage limit (nil limit
// means unlimited).
func (cpn *Coupon) IsValidAt(now time.Time) bool {
	if !cpn.IsActive {
		return false
	}
	if now.Before(cpn.ValidFrom) || now.After(cpn.ValidUntil) {
		return false
	}
	if cpn.UsageLimit != nil && cpn.UsedCount >= *cpn.UsageLimit {
		return false
	}
	return true
}

// DiscountFor computes the discount amount for an order of the given value.
// Percentage coupons are clamped to MaxDiscount when set; the result is
// always clamped to the order amount so a discount can never exceed it.
func (cpn *Coupon) DiscountFor(orderAmount float64, now time.Time) (float64, error) {
	if !cpn.IsValidAt(now) {
		return 0, ErrCouponInvalid
	}
	if orderAmount < cpn.MinOrderValue {
		return 0, MinOrderError{MinOrderValue: cpn.MinOrderValue}
	}

	amount := decimal.NewFromFloat(orderAmount)

	var discount decimal.Decimal
	if cpn.DiscountType == DiscountTypePercentage {
		discount = amount.
			Mul(decimal.NewFromFloat(cpn.DiscountValue)).
			Div(decimal.NewFromInt(100))
		if cpn.MaxDiscount > 0 {
			if ceiling := decimal.NewFromFloat(cpn.MaxDiscount); discount.GreaterThan(ceiling) {
				discount = ceiling
			}
		}
	} else {
		discount = decimal.NewFromFloat(cpn.DiscountValue)
	}

	if discount.GreaterThan(amount) {
		discount = amount
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	value, _ := discount.Round(2).Float64()
	return value, nil
}
