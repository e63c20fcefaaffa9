// Package coupon provides the coupon validators checkout can be wired with.
package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

// DefaultCode is the demo coupon accepted by the static validator.
const DefaultCode = "DESCONTO10"

// StaticValidator accepts a single code, compared case-insensitively, worth a
// fixed percentage.
type StaticValidator struct {
	code    string
	percent decimal.Decimal
}

// NewStaticValidator falls back to DESCONTO10 at 10% for empty arguments.
func NewStaticValidator(code string, percent decimal.Decimal) *StaticValidator {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCode
	}
	if !percent.IsPositive() {
		percent = decimal.NewFromInt(10)
	}
	return &StaticValidator{code: code, percent: percent}
}

func (v *StaticValidator) Validate(_ context.Context, code string) (*domain.Coupon, error) {
	if !strings.EqualFold(strings.TrimSpace(code), v.code) {
		return nil, domain.ErrCouponRejected
	}
	return &domain.Coupon{Code: v.code, Discount: v.percent, Kind: domain.DiscountPercentage}, nil
}

// StoreValidator looks codes up in the coupon collection and rejects inactive
// or expired ones.
type StoreValidator struct {
	repo ports.CouponRepository
	now  func() time.Time
}

func NewStoreValidator(repo ports.CouponRepository) *StoreValidator {
	return &StoreValidator{repo: repo, now: time.Now}
}

func (v *StoreValidator) Validate(ctx context.Context, code string) (*domain.Coupon, error) {
	rec, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !rec.Usable(v.now()) {
		return nil, domain.ErrCouponRejected
	}
	c := rec.Coupon
	return &c, nil
}
