package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
)

// ProducerStats is the producer dashboard summary.
type ProducerStats struct {
	Products   int
	TotalSales int
	Revenue    decimal.Decimal
}

// CreateProductInput carries a new catalog item.
type CreateProductInput struct {
	ProducerID    string
	Title         string
	Description   string
	Kind          domain.ProductKind
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Category      string
	Tags          []string
	ImageURL      string
}

// ProducerService covers the producer dashboard.
type ProducerService interface {
	Products(ctx context.Context, producerID string) ([]*domain.Product, error)
	Stats(ctx context.Context, producerID string) (*ProducerStats, error)
	CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	SetProductActive(ctx context.Context, producerID, productID string, active bool) error
}
