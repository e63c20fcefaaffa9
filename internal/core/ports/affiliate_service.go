package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
)

// CommissionEvent is emitted for every order placed with a referral code.
type CommissionEvent struct {
	ReferralCode string
	PurchaseID   string
	ProductID    string
	ProductTitle string
	BuyerID      string
	Amount       decimal.Decimal
	At           time.Time
}

// CommissionQueue accepts commission events for asynchronous processing.
type CommissionQueue interface {
	Enqueue(ev CommissionEvent)
}

// AffiliateService covers the affiliate dashboard and referral attribution.
type AffiliateService interface {
	// Profile returns the affiliate profile, creating it on first use.
	Profile(ctx context.Context, userID string) (*domain.Affiliate, error)
	Stats(ctx context.Context, userID string) (*domain.AffiliateStats, error)
	Sales(ctx context.Context, userID string) ([]domain.AffiliateSale, error)
	ReferralLink(ctx context.Context, userID, productID string) (string, error)
	RecordReferralSale(ctx context.Context, ev CommissionEvent) error
}
