package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of a purchase.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentCanceled PaymentStatus = "canceled"
	PaymentRefunded PaymentStatus = "refunded"
)

// Purchase records a checkout. PricePaid includes tax; DiscountApplied is
// the amount taken off the base price by the coupon.
type Purchase struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ProductID       string          `json:"product_id"`
	ProductTitle    string          `json:"product_title,omitempty"`
	PricePaid       decimal.Decimal `json:"price_paid"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	ReferralCode    string          `json:"referral_code,omitempty"`
	Currency        string          `json:"currency"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	Status          PaymentStatus   `json:"status"`
	Billing         *Billing        `json:"billing,omitempty"`
	PurchasedAt     time.Time       `json:"purchased_at"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
}

// Billing is the invoicing data collected at checkout.
type Billing struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	TaxID      string `json:"tax_id,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}
