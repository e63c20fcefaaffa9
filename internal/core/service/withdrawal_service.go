package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
	"github.com/clikenova/storefront/internal/core/pricing"
)

// WithdrawalConfig holds the payout parameters.
type WithdrawalConfig struct {
	FeePercent decimal.Decimal
	Currency   string
}

// WithdrawalService handles payout requests. Producers withdraw sales revenue
// and affiliates withdraw earned commissions; every non-rejected request
// reduces the available balance.
type WithdrawalService struct {
	withdrawals   ports.WithdrawalRepository
	affiliates    ports.AffiliateService
	producers     ports.ProducerService
	notifications ports.NotificationService
	locks         ports.Locker
	cfg           WithdrawalConfig
	log           zerolog.Logger
	now           func() time.Time
}

func NewWithdrawalService(
	withdrawals ports.WithdrawalRepository,
	affiliates ports.AffiliateService,
	producers ports.ProducerService,
	notifications ports.NotificationService,
	locks ports.Locker,
	cfg WithdrawalConfig,
	log zerolog.Logger,
) *WithdrawalService {
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	return &WithdrawalService{
		withdrawals:   withdrawals,
		affiliates:    affiliates,
		producers:     producers,
		notifications: notifications,
		locks:         locks,
		cfg:           cfg,
		log:           log,
		now:           time.Now,
	}
}

// Request files a pending payout request. Requests of one user are
// serialized so the balance check and the insert cannot interleave with
// another request.
func (s *WithdrawalService) Request(ctx context.Context, in ports.WithdrawalInput) (*domain.Withdrawal, error) {
	kind, err := withdrawalKind(in.Role)
	if err != nil {
		return nil, err
	}

	fee, net, err := pricing.WithdrawalFee(in.Amount, s.cfg.FeePercent)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, "withdrawal:"+in.UserID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("withdrawal lock not acquired")
		return nil, err
	}
	defer unlock()

	available, err := s.Balance(ctx, in.UserID, in.Role)
	if err != nil {
		return nil, err
	}
	if pricing.Round(in.Amount).GreaterThan(available) {
		return nil, fmt.Errorf("requested %s, available %s: %w",
			in.Amount.StringFixed(pricing.CentPlaces), available.StringFixed(pricing.CentPlaces), domain.ErrInsufficientBalance)
	}

	w := &domain.Withdrawal{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		Kind:          kind,
		Amount:        pricing.Round(in.Amount),
		Fee:           fee,
		NetAmount:     net,
		Currency:      s.cfg.Currency,
		PaymentMethod: in.PaymentMethod,
		Status:        domain.WithdrawalPending,
		Notes:         in.Notes,
		RequestedAt:   s.now().UTC(),
	}
	if err := s.withdrawals.Create(ctx, w); err != nil {
		s.log.Error().Err(err).Str("user_id", in.UserID).Msg("failed to store withdrawal")
		return nil, fmt.Errorf("request withdrawal: %w", joinPersistence(err))
	}

	s.log.Info().Str("withdrawal_id", w.ID).Str("user_id", in.UserID).Str("amount", w.Amount.String()).Msg("withdrawal requested")
	return w, nil
}

// List returns the user's requests, newest first.
func (s *WithdrawalService) List(ctx context.Context, userID string) ([]*domain.Withdrawal, error) {
	return s.withdrawals.ListByUser(ctx, userID)
}

// Balance is earnings minus every non-rejected withdrawal.
func (s *WithdrawalService) Balance(ctx context.Context, userID string, role domain.Role) (decimal.Decimal, error) {
	var earned decimal.Decimal
	switch role {
	case domain.RoleAffiliate:
		sales, err := s.affiliates.Sales(ctx, userID)
		if err != nil {
			return decimal.Zero, err
		}
		for _, sale := range sales {
			if sale.Status != domain.SaleCanceled {
				earned = earned.Add(sale.Commission)
			}
		}
	case domain.RoleProducer:
		st, err := s.producers.Stats(ctx, userID)
		if err != nil {
			return decimal.Zero, err
		}
		earned = st.Revenue
	default:
		return decimal.Zero, domain.ErrWithdrawalNotAllowed
	}

	past, err := s.withdrawals.ListByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	for _, w := range past {
		if w.Status.Outstanding() {
			earned = earned.Sub(w.Amount)
		}
	}
	if earned.IsNegative() {
		return decimal.Zero, nil
	}
	return pricing.Round(earned), nil
}

// Queue lists requests in the given status for review; empty means all.
func (s *WithdrawalService) Queue(ctx context.Context, status domain.WithdrawalStatus) ([]*domain.Withdrawal, error) {
	return s.withdrawals.ListByStatus(ctx, status)
}

// Transition moves a request through the review state machine and notifies
// the requester.
func (s *WithdrawalService) Transition(ctx context.Context, id string, to domain.WithdrawalStatus) (*domain.Withdrawal, error) {
	w, err := s.withdrawals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !w.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("withdrawal %s: %w (from %s to %s)", id, domain.ErrInvalidTransition, w.Status, to)
	}

	now := s.now().UTC()
	if err := s.withdrawals.UpdateStatus(ctx, id, w.Status, to, now); err != nil {
		return nil, err
	}

	w.Status = to
	switch to {
	case domain.WithdrawalProcessing, domain.WithdrawalRejected:
		w.ProcessedAt = &now
	case domain.WithdrawalPaid:
		w.PaidAt = &now
	}

	kind := domain.NotificationInfo
	switch to {
	case domain.WithdrawalRejected:
		kind = domain.NotificationWarning
	case domain.WithdrawalPaid:
		kind = domain.NotificationSuccess
	}
	if err := s.notifications.Notify(ctx, w.UserID, ports.NotificationInput{
		Kind:  kind,
		Title: "Withdrawal " + string(to),
		Body:  fmt.Sprintf("Your withdrawal of %s %s is now %s.", w.Amount.StringFixed(pricing.CentPlaces), w.Currency, to),
	}); err != nil {
		s.log.Warn().Err(err).Str("withdrawal_id", id).Msg("withdrawal notification dropped")
	}

	s.log.Info().Str("withdrawal_id", id).Str("status", string(to)).Msg("withdrawal transitioned")
	return w, nil
}

func withdrawalKind(role domain.Role) (domain.WithdrawalKind, error) {
	switch role {
	case domain.RoleAffiliate:
		return domain.WithdrawalCommissions, nil
	case domain.RoleProducer:
		return domain.WithdrawalSales, nil
	}
	return "", domain.ErrWithdrawalNotAllowed
}
