package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

const (
	defaultCatalogLimit = 24
	maxCatalogLimit     = 100
)

type CatalogService struct {
	products  ports.ProductRepository
	courses   ports.CourseRepository
	purchases ports.PurchaseRepository
	log       zerolog.Logger
}

func NewCatalogService(
	products ports.ProductRepository,
	courses ports.CourseRepository,
	purchases ports.PurchaseRepository,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{products: products, courses: courses, purchases: purchases, log: log}
}

// List returns active products only; the limit is capped at maxCatalogLimit.
func (s *CatalogService) List(ctx context.Context, filter ports.ProductFilter) ([]*domain.Product, error) {
	filter.IncludeInactive = false
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultCatalogLimit
	case filter.Limit > maxCatalogLimit:
		filter.Limit = maxCatalogLimit
	}
	return s.products.List(ctx, filter)
}

// Product returns an active product.
func (s *CatalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// Outline returns the course content of a product. Video URLs are kept for
// preview videos, for buyers and for the owning producer.
func (s *CatalogService) Outline(ctx context.Context, productID, viewerID string) (*domain.CourseOutline, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Kind != domain.ProductCourse {
		return nil, fmt.Errorf("product %s is a %s: %w", productID, p.Kind, domain.ErrProductNotFound)
	}

	outline, err := s.courses.Outline(ctx, productID)
	if err != nil {
		return nil, err
	}

	entitled := viewerID != "" && viewerID == p.ProducerID
	if !entitled && viewerID != "" {
		entitled, err = s.purchases.HasPurchased(ctx, viewerID, productID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", viewerID).Str("product_id", productID).Msg("purchase check failed, hiding content")
			entitled = false
		}
	}
	if !entitled {
		for i := range outline.Modules {
			for j := range outline.Modules[i].Videos {
				if v := &outline.Modules[i].Videos[j]; !v.Preview {
					v.URL = ""
				}
			}
		}
	}
	return outline, nil
}
