// Package pricing holds the checkout arithmetic. Every function is pure and
// works on decimal values; rounding to cents happens only on the way out.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
)

// CentPlaces is the number of decimal places money is displayed with.
const CentPlaces = 2

var hundred = decimal.NewFromInt(100)

// Breakdown is the order summary shown at checkout.
type Breakdown struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
}

// ComputeTotal returns (basePrice − discount) × (1 + taxRate) rounded to cents.
// The discounted price never drops below zero.
func ComputeTotal(basePrice decimal.Decimal, coupon *domain.Coupon, taxRate decimal.Decimal) (decimal.Decimal, error) {
	b, err := Quote(basePrice, coupon, taxRate)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Total, nil
}

// Quote computes every line of the order summary. Each line is rounded from
// the unrounded intermediate, not from another rounded line.
func Quote(basePrice decimal.Decimal, coupon *domain.Coupon, taxRate decimal.Decimal) (Breakdown, error) {
	if basePrice.IsNegative() {
		return Breakdown{}, fmt.Errorf("base price %s: %w", basePrice, domain.ErrInvalidAmount)
	}
	if taxRate.IsNegative() {
		return Breakdown{}, fmt.Errorf("tax rate %s: %w", taxRate, domain.ErrInvalidAmount)
	}

	discounted, err := applyDiscount(basePrice, coupon)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Subtotal:        Round(basePrice),
		Discount:        Round(basePrice.Sub(discounted)),
		DiscountedPrice: Round(discounted),
		TaxRate:         taxRate,
		Tax:             Round(discounted.Mul(taxRate)),
		Total:           Round(discounted.Mul(decimal.NewFromInt(1).Add(taxRate))),
	}, nil
}

func applyDiscount(basePrice decimal.Decimal, coupon *domain.Coupon) (decimal.Decimal, error) {
	if coupon == nil {
		return basePrice, nil
	}
	if coupon.Discount.IsNegative() {
		return decimal.Zero, fmt.Errorf("coupon %q discount %s: %w", coupon.Code, coupon.Discount, domain.ErrInvalidAmount)
	}

	var out decimal.Decimal
	switch coupon.Kind {
	case domain.DiscountPercentage:
		out = basePrice.Mul(decimal.NewFromInt(1).Sub(coupon.Discount.Div(hundred)))
	case domain.DiscountFixed:
		out = basePrice.Sub(coupon.Discount)
	default:
		return decimal.Zero, fmt.Errorf("coupon %q kind %q: %w", coupon.Code, coupon.Kind, domain.ErrCouponRejected)
	}

	if out.IsNegative() {
		return decimal.Zero, nil
	}
	return out, nil
}

// Round rounds half away from zero to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// Commission is the affiliate share of a sale.
func Commission(saleAmount, percent decimal.Decimal) (decimal.Decimal, error) {
	if saleAmount.IsNegative() || percent.IsNegative() || percent.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("commission %s%% of %s: %w", percent, saleAmount, domain.ErrInvalidAmount)
	}
	return Round(saleAmount.Mul(percent).Div(hundred)), nil
}

// WithdrawalFee splits a payout request into the platform fee and the net
// amount transferred.
func WithdrawalFee(amount, feePercent decimal.Decimal) (fee, net decimal.Decimal, err error) {
	if !amount.IsPositive() || feePercent.IsNegative() || feePercent.GreaterThan(hundred) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("withdrawal %s with fee %s%%: %w", amount, feePercent, domain.ErrInvalidAmount)
	}
	fee = Round(amount.Mul(feePercent).Div(hundred))
	return fee, Round(amount).Sub(fee), nil
}
