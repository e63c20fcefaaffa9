package ports

import (
	"context"
	"time"

	"github.com/clikenova/storefront/internal/core/domain"
)

// AffiliateRepository persists affiliate profiles and their sales.
type AffiliateRepository interface {
	Create(ctx context.Context, a *domain.Affiliate) error
	// FindByUser and FindByCode return domain.ErrAffiliateNotFound when missing.
	FindByUser(ctx context.Context, userID string) (*domain.Affiliate, error)
	FindByCode(ctx context.Context, code string) (*domain.Affiliate, error)
	// RecordSale stores the sale and bumps the affiliate totals. A second sale
	// for the same purchase returns domain.ErrDuplicateSale.
	RecordSale(ctx context.Context, sale *domain.AffiliateSale) error
	ListSales(ctx context.Context, affiliateID string) ([]domain.AffiliateSale, error)
}

// WithdrawalRepository persists payout requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, w *domain.Withdrawal) error
	// FindByID returns domain.ErrWithdrawalNotFound when missing.
	FindByID(ctx context.Context, id string) (*domain.Withdrawal, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Withdrawal, error)
	// ListByStatus returns every withdrawal when status is empty.
	ListByStatus(ctx context.Context, status domain.WithdrawalStatus) ([]*domain.Withdrawal, error)
	// UpdateStatus moves the withdrawal from one status to another atomically;
	// it returns domain.ErrInvalidTransition if the stored status is not from.
	UpdateStatus(ctx context.Context, id string, from, to domain.WithdrawalStatus, at time.Time) error
}
