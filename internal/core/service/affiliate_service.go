package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
	"github.com/clikenova/storefront/internal/core/pricing"
)

// AffiliateConfig holds the referral defaults.
type AffiliateConfig struct {
	// BaseURL is the public storefront origin referral links point to.
	BaseURL           string
	CommissionPercent decimal.Decimal
}

type AffiliateService struct {
	affiliates    ports.AffiliateRepository
	products      ports.ProductRepository
	notifications ports.NotificationService
	cfg           AffiliateConfig
	log           zerolog.Logger
	now           func() time.Time
}

func NewAffiliateService(
	affiliates ports.AffiliateRepository,
	products ports.ProductRepository,
	notifications ports.NotificationService,
	cfg AffiliateConfig,
	log zerolog.Logger,
) *AffiliateService {
	if cfg.CommissionPercent.IsZero() {
		cfg.CommissionPercent = decimal.NewFromInt(20)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &AffiliateService{
		affiliates:    affiliates,
		products:      products,
		notifications: notifications,
		cfg:           cfg,
		log:           log,
		now:           time.Now,
	}
}

// Profile returns the affiliate profile of userID, creating it with a fresh
// referral code on first use.
func (s *AffiliateService) Profile(ctx context.Context, userID string) (*domain.Affiliate, error) {
	a, err := s.affiliates.FindByUser(ctx, userID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, domain.ErrAffiliateNotFound) {
		return nil, err
	}

	a = &domain.Affiliate{
		ID:                uuid.NewString(),
		UserID:            userID,
		ReferralCode:      newReferralCode(),
		CommissionPercent: s.cfg.CommissionPercent,
		TotalSales:        decimal.Zero,
		TotalCommissions:  decimal.Zero,
		Active:            true,
		RegisteredAt:      s.now().UTC(),
	}
	if err := s.affiliates.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create affiliate profile: %w", joinPersistence(err))
	}
	s.log.Info().Str("user_id", userID).Str("code", a.ReferralCode).Msg("affiliate profile created")
	return a, nil
}

// Stats summarises the affiliate's sales.
func (s *AffiliateService) Stats(ctx context.Context, userID string) (*domain.AffiliateStats, error) {
	sales, err := s.Sales(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := domain.SummariseSales(sales)
	return &st, nil
}

// Sales lists the affiliate's attributed sales, newest first.
func (s *AffiliateService) Sales(ctx context.Context, userID string) ([]domain.AffiliateSale, error) {
	a, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.affiliates.ListSales(ctx, a.ID)
}

// ReferralLink returns <base>/product/<id>?ref=<code>.
func (s *AffiliateService) ReferralLink(ctx context.Context, userID, productID string) (string, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return "", err
	}
	a, err := s.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	q := url.Values{"ref": {a.ReferralCode}}
	return fmt.Sprintf("%s/product/%s?%s", s.cfg.BaseURL, url.PathEscape(productID), q.Encode()), nil
}

// RecordReferralSale attributes a purchase to the affiliate owning the
// referral code. Unknown codes, inactive affiliates and self-referrals are
// ignored; a purchase is attributed at most once.
func (s *AffiliateService) RecordReferralSale(ctx context.Context, ev ports.CommissionEvent) error {
	a, err := s.affiliates.FindByCode(ctx, ev.ReferralCode)
	if err != nil {
		if errors.Is(err, domain.ErrAffiliateNotFound) {
			s.log.Debug().Str("code", ev.ReferralCode).Msg("unknown referral code")
			return nil
		}
		return err
	}
	if !a.Active || a.UserID == ev.BuyerID {
		return nil
	}

	commission, err := pricing.Commission(ev.Amount, a.CommissionPercent)
	if err != nil {
		return err
	}

	sale := &domain.AffiliateSale{
		ID:                uuid.NewString(),
		AffiliateID:       a.ID,
		PurchaseID:        ev.PurchaseID,
		ProductID:         ev.ProductID,
		ProductTitle:      ev.ProductTitle,
		SaleAmount:        pricing.Round(ev.Amount),
		Commission:        commission,
		CommissionPercent: a.CommissionPercent,
		Status:            domain.SalePending,
		SoldAt:            ev.At,
	}
	if err := s.affiliates.RecordSale(ctx, sale); err != nil {
		if errors.Is(err, domain.ErrDuplicateSale) {
			return nil
		}
		return fmt.Errorf("record affiliate sale: %w", joinPersistence(err))
	}

	if err := s.notifications.Notify(ctx, a.UserID, ports.NotificationInput{
		Kind:      domain.NotificationSuccess,
		Title:     "New referral sale",
		Body:      fmt.Sprintf("%s sold through your link. Commission: %s.", ev.ProductTitle, commission.StringFixed(pricing.CentPlaces)),
		ActionURL: domain.DashboardPath(domain.RoleAffiliate),
	}); err != nil {
		s.log.Warn().Err(err).Str("affiliate_id", a.ID).Msg("sale notification dropped")
	}

	s.log.Info().
		Str("affiliate_id", a.ID).
		Str("purchase_id", ev.PurchaseID).
		Str("commission", commission.StringFixed(pricing.CentPlaces)).
		Msg("referral sale recorded")
	return nil
}

func newReferralCode() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:10])
}
