package ports

import (
	"context"

	"github.com/clikenova/storefront/internal/core/domain"
)

// CatalogService is the public read side of the catalog.
type CatalogService interface {
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
	// Outline hides video URLs from viewers who did not buy the course,
	// except for preview videos. viewerID may be empty.
	Outline(ctx context.Context, productID, viewerID string) (*domain.CourseOutline, error)
}
