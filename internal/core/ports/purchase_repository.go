package ports

import (
	"context"

	"github.com/clikenova/storefront/internal/core/domain"
)

// PurchaseRepository persists checkouts.
type PurchaseRepository interface {
	Create(ctx context.Context, p *domain.Purchase) error
	// FindByID returns domain.ErrPurchaseNotFound when missing. When userID is
	// non-empty the lookup is additionally scoped to the buyer.
	FindByID(ctx context.Context, id, userID string) (*domain.Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Purchase, error)
	HasPurchased(ctx context.Context, userID, productID string) (bool, error)
	Count(ctx context.Context) (int64, error)
}
