package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountKind selects how a coupon discount is applied.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// Coupon entitles a discount at checkout. Discount is a percent for
// DiscountPercentage and a currency amount for DiscountFixed.
type Coupon struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Kind     DiscountKind    `json:"kind"`
}

// CouponRecord is a stored coupon definition.
type CouponRecord struct {
	Coupon
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Usable reports whether the record can be applied at t.
func (c CouponRecord) Usable(t time.Time) bool {
	if !c.Active {
		return false
	}
	return c.ExpiresAt == nil || t.Before(*c.ExpiresAt)
}
