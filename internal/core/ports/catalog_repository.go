package ports

import (
	"context"

	"github.com/clikenova/storefront/internal/core/domain"
)

// ProductFilter carries the catalog query parameters.
type ProductFilter struct {
	ProducerID      string             // empty = every producer
	Kind            domain.ProductKind // optional
	Category        string             // optional
	Search          string             // optional: partial match on title
	IncludeInactive bool
	Limit           int
}

// ProductRepository persists catalog items.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	// FindByID returns domain.ErrProductNotFound when missing.
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// List returns featured products first, then newest first.
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	// SetActive is scoped to the owning producer.
	SetActive(ctx context.Context, id, producerID string, active bool) error
	IncrementSales(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// CourseRepository reads course content.
type CourseRepository interface {
	// Outline returns the course attached to productID with active modules
	// and videos in position order.
	Outline(ctx context.Context, productID string) (*domain.CourseOutline, error)
	SaveOutline(ctx context.Context, outline *domain.CourseOutline) error
}

// CouponRepository stores coupon definitions.
type CouponRepository interface {
	// FindByCode matches case-insensitively and returns
	// domain.ErrCouponRejected when no coupon exists.
	FindByCode(ctx context.Context, code string) (*domain.CouponRecord, error)
	Upsert(ctx context.Context, c *domain.CouponRecord) error
}

// CouponValidator turns a coupon code into a discount. It is the pluggable
// seam between the pricing math and whatever decides coupon validity.
type CouponValidator interface {
	// Validate returns domain.ErrCouponRejected for unknown or unusable codes.
	Validate(ctx context.Context, code string) (*domain.Coupon, error)
}
