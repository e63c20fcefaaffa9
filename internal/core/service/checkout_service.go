package service

import (
	"context"
	"errors"
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

// CheckoutConfig holds the pricing parameters shared by every order.
type CheckoutConfig struct {
	TaxRate  decimal.Decimal
	Currency string
}

// CheckoutService prices products and records mock purchases. Settlement is
// out of scope: every order is stored as pending.
type CheckoutService struct {
	products      ports.ProductRepository
	purchases     ports.PurchaseRepository
	coupons       ports.CouponValidator
	idempotency   ports.IdempotencyStore
	commissions   ports.CommissionQueue
	notifications ports.NotificationService
	cfg           CheckoutConfig
	log           zerolog.Logger
	now           func() time.Time
}

func NewCheckoutService(
	products ports.ProductRepository,
	purchases ports.PurchaseRepository,
	coupons ports.CouponValidator,
	idempotency ports.IdempotencyStore,
	commissions ports.CommissionQueue,
	notifications ports.NotificationService,
	cfg CheckoutConfig,
	log zerolog.Logger,
) *CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	return &CheckoutService{
		products:      products,
		purchases:     purchases,
		coupons:       coupons,
		idempotency:   idempotency,
		commissions:   commissions,
		notifications: notifications,
		cfg:           cfg,
		log:           log,
		now:           time.Now,
	}
}

// ApplyCoupon asks the validator for the discount behind code.
func (s *CheckoutService) ApplyCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrCouponRejected
	}
	c, err := s.coupons.Validate(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrCouponRejected) {
			s.log.Debug().Str("code", code).Msg("coupon rejected")
		}
		return nil, err
	}
	return c, nil
}

// Quote builds the order summary for a product and an optional coupon code.
// A rejected coupon fails the quote so the client can show why.
func (s *CheckoutService) Quote(ctx context.Context, in ports.QuoteInput) (*ports.Quote, error) {
	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, domain.ErrProductNotFound
	}

	var coupon *domain.Coupon
	if strings.TrimSpace(in.CouponCode) != "" {
		if coupon, err = s.ApplyCoupon(ctx, in.CouponCode); err != nil {
			return nil, err
		}
	}

	b, err := pricing.Quote(product.Price, coupon, s.cfg.TaxRate)
	if err != nil {
		return nil, err
	}

	currency := product.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}
	return &ports.Quote{Product: product, Coupon: coupon, Breakdown: b, Currency: currency}, nil
}

// PlaceOrder records a pending purchase for the session identity. The
// Idempotency-Key is claimed per buyer before anything is stored: a repeated
// key returns the original purchase without side effects, and a key whose
// first order is still being placed fails with domain.ErrRequestInFlight.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sess ports.Session, in ports.PlaceOrderInput) (*ports.OrderResult, error) {
	buyer := ownerOf(sess)
	if buyer == "" {
		return nil, domain.ErrUnauthenticated
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		prev, held, err := s.claim(ctx, buyer, key)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			return prev, nil
		}
		if held {
			placed := false
			defer func() {
				if !placed {
					s.release(ctx, buyer, key)
				}
			}()
			res, err := s.placeOrder(ctx, sess, buyer, in)
			if err != nil {
				return nil, err
			}
			placed = true
			if err := s.idempotency.Complete(context.WithoutCancel(ctx), buyer, key, res.Purchase.ID); err != nil {
				// The key stays pending until it expires, which blocks retries
				// instead of duplicating the order.
				s.log.Error().Err(err).Str("user_id", buyer).Str("idempotency_key", key).Msg("failed to complete idempotency key")
			}
			return res, nil
		}
	}
	return s.placeOrder(ctx, sess, buyer, in)
}

func (s *CheckoutService) placeOrder(ctx context.Context, sess ports.Session, buyer string, in ports.PlaceOrderInput) (*ports.OrderResult, error) {
	quote, err := s.Quote(ctx, ports.QuoteInput{ProductID: in.ProductID, CouponCode: in.CouponCode})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	billing := in.Billing
	purchase := &domain.Purchase{
		ID:              uuid.NewString(),
		UserID:          buyer,
		ProductID:       quote.Product.ID,
		ProductTitle:    quote.Product.Title,
		PricePaid:       quote.Breakdown.Total,
		DiscountApplied: quote.Breakdown.Discount,
		ReferralCode:    strings.TrimSpace(in.ReferralCode),
		Currency:        quote.Currency,
		PaymentMethod:   in.PaymentMethod,
		Status:          domain.PaymentPending,
		Billing:         &billing,
		PurchasedAt:     now,
	}
	if quote.Coupon != nil {
		purchase.CouponCode = quote.Coupon.Code
	}

	if err := s.purchases.Create(ctx, purchase); err != nil {
		s.log.Error().Err(err).Str("user_id", buyer).Str("product_id", in.ProductID).Msg("failed to record purchase")
		return nil, fmt.Errorf("place order: %w", joinPersistence(err))
	}

	if err := s.products.IncrementSales(ctx, purchase.ProductID); err != nil {
		s.log.Warn().Err(err).Str("product_id", purchase.ProductID).Msg("failed to bump sales count")
	}

	if purchase.ReferralCode != "" && s.commissions != nil {
		s.commissions.Enqueue(ports.CommissionEvent{
			ReferralCode: purchase.ReferralCode,
			PurchaseID:   purchase.ID,
			ProductID:    purchase.ProductID,
			ProductTitle: purchase.ProductTitle,
			BuyerID:      buyer,
			Amount:       quote.Breakdown.DiscountedPrice,
			At:           now,
		})
	}

	if _, err := s.notifications.Add(ctx, sess, ports.NotificationInput{
		Kind:  domain.NotificationSuccess,
		Title: "Order received",
		Body:  fmt.Sprintf("Your order for %s (%s %s) is awaiting payment.", purchase.ProductTitle, purchase.PricePaid.StringFixed(pricing.CentPlaces), purchase.Currency),
	}); err != nil {
		s.log.Warn().Err(err).Str("purchase_id", purchase.ID).Msg("order notification dropped")
	}

	s.log.Info().
		Str("purchase_id", purchase.ID).
		Str("user_id", buyer).
		Str("product_id", purchase.ProductID).
		Str("total", purchase.PricePaid.StringFixed(pricing.CentPlaces)).
		Msg("order placed")

	return &ports.OrderResult{Purchase: purchase, Quote: quote}, nil
}

// claim reserves key for buyer. It returns the earlier result when the key
// already answered an order, and held=false when the store is unavailable.
func (s *CheckoutService) claim(ctx context.Context, buyer, key string) (prev *ports.OrderResult, held bool, err error) {
	claimed, purchaseID, err := s.idempotency.Claim(ctx, buyer, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency claim failed, placing order without replay protection")
		return nil, false, nil
	}
	if claimed {
		return nil, true, nil
	}
	if purchaseID == "" {
		return nil, false, fmt.Errorf("idempotency key %q: %w", key, domain.ErrRequestInFlight)
	}

	existing, err := s.purchases.FindByID(ctx, purchaseID, buyer)
	if err != nil {
		return nil, false, fmt.Errorf("replay order: %w", err)
	}
	s.log.Info().Str("idempotency_key", key).Str("purchase_id", existing.ID).Msg("idempotent replay")
	return &ports.OrderResult{Purchase: existing, Replayed: true}, false, nil
}

func (s *CheckoutService) release(ctx context.Context, buyer, key string) {
	if err := s.idempotency.Release(context.WithoutCancel(ctx), buyer, key); err != nil {
		s.log.Warn().Err(err).Str("user_id", buyer).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

// Purchases lists the orders of a buyer, newest first.
func (s *CheckoutService) Purchases(ctx context.Context, userID string) ([]*domain.Purchase, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.purchases.ListByUser(ctx, userID)
}
