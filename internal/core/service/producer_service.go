package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
	"github.com/clikenova/storefront/internal/core/pricing"
)

type ProducerService struct {
	products ports.ProductRepository
	currency string
	log      zerolog.Logger
	now      func() time.Time
}

func NewProducerService(products ports.ProductRepository, currency string, log zerolog.Logger) *ProducerService {
	if currency == "" {
		currency = "EUR"
	}
	return &ProducerService{products: products, currency: currency, log: log, now: time.Now}
}

// Products lists every product of the producer, inactive ones included.
func (s *ProducerService) Products(ctx context.Context, producerID string) ([]*domain.Product, error) {
	return s.products.List(ctx, ports.ProductFilter{ProducerID: producerID, IncludeInactive: true})
}

// Stats computes the dashboard figures. Revenue is the sum over products of
// price × sales count.
func (s *ProducerService) Stats(ctx context.Context, producerID string) (*ports.ProducerStats, error) {
	products, err := s.Products(ctx, producerID)
	if err != nil {
		return nil, err
	}

	st := &ports.ProducerStats{Products: len(products), Revenue: decimal.Zero}
	for _, p := range products {
		st.TotalSales += p.SalesCount
		st.Revenue = st.Revenue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.SalesCount))))
	}
	st.Revenue = pricing.Round(st.Revenue)
	return st, nil
}

// CreateProduct adds an active product to the catalog.
func (s *ProducerService) CreateProduct(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	switch in.Kind {
	case domain.ProductCourse, domain.ProductEbook, domain.ProductDigital, domain.ProductPhysical:
	default:
		return nil, fmt.Errorf("unknown product kind %q: %w", in.Kind, domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("price %s: %w", in.Price, domain.ErrInvalidAmount)
	}

	now := s.now().UTC()
	p := &domain.Product{
		ID:            uuid.NewString(),
		ProducerID:    in.ProducerID,
		Title:         title,
		Description:   in.Description,
		Kind:          in.Kind,
		Price:         pricing.Round(in.Price),
		OriginalPrice: in.OriginalPrice,
		Currency:      s.currency,
		Active:        true,
		ImageURL:      in.ImageURL,
		Category:      in.Category,
		Tags:          in.Tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		s.log.Error().Err(err).Str("producer_id", in.ProducerID).Msg("failed to create product")
		return nil, fmt.Errorf("create product: %w", joinPersistence(err))
	}

	s.log.Info().Str("product_id", p.ID).Str("producer_id", in.ProducerID).Msg("product created")
	return p, nil
}

// SetProductActive publishes or hides one of the producer's products.
func (s *ProducerService) SetProductActive(ctx context.Context, producerID, productID string, active bool) error {
	return s.products.SetActive(ctx, productID, producerID, active)
}
