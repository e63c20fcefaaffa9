package ports

import (
	"context"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/pricing"
)

// QuoteInput selects a product and an optional coupon code.
type QuoteInput struct {
	ProductID  string
	CouponCode string
}

// Quote is the order summary shown before payment.
type Quote struct {
	Product   *domain.Product
	Coupon    *domain.Coupon // nil when no coupon was applied
	Breakdown pricing.Breakdown
	Currency  string
}

// PlaceOrderInput carries a checkout submission.
type PlaceOrderInput struct {
	ProductID      string
	CouponCode     string
	ReferralCode   string
	PaymentMethod  string
	IdempotencyKey string
	Billing        domain.Billing
}

// OrderResult is returned by PlaceOrder.
type OrderResult struct {
	Purchase *domain.Purchase
	Quote    *Quote
	// Replayed is true when the Idempotency-Key matched an earlier order.
	Replayed bool
}

// CheckoutService prices products and records purchases.
type CheckoutService interface {
	ApplyCoupon(ctx context.Context, code string) (*domain.Coupon, error)
	Quote(ctx context.Context, in QuoteInput) (*Quote, error)
	PlaceOrder(ctx context.Context, sess Session, in PlaceOrderInput) (*OrderResult, error)
	Purchases(ctx context.Context, userID string) ([]*domain.Purchase, error)
}
