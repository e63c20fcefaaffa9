package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

const maxIdentityPage = 200

type AdminService struct {
	identities  ports.IdentityRepository
	products    ports.ProductRepository
	purchases   ports.PurchaseRepository
	withdrawals ports.WithdrawalRepository
	credentials ports.CredentialProvider
	log         zerolog.Logger
}

func NewAdminService(
	identities ports.IdentityRepository,
	products ports.ProductRepository,
	purchases ports.PurchaseRepository,
	withdrawals ports.WithdrawalRepository,
	credentials ports.CredentialProvider,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		identities:  identities,
		products:    products,
		purchases:   purchases,
		withdrawals: withdrawals,
		credentials: credentials,
		log:         log,
	}
}

// Overview gathers the platform counters shown on the admin dashboard.
func (s *AdminService) Overview(ctx context.Context) (*ports.PlatformOverview, error) {
	byRole, err := s.identities.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchases.Count(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.withdrawals.ListByStatus(ctx, domain.WithdrawalPending)
	if err != nil {
		return nil, err
	}

	ov := &ports.PlatformOverview{
		IdentitiesByRole:   byRole,
		Products:           products,
		Purchases:          purchases,
		PendingWithdrawals: len(pending),
	}
	for _, n := range byRole {
		ov.TotalIdentities += n
	}
	return ov, nil
}

// Identities lists profiles, optionally filtered by role.
func (s *AdminService) Identities(ctx context.Context, role domain.Role, limit int) ([]*domain.Identity, error) {
	if role != "" && !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if limit <= 0 || limit > maxIdentityPage {
		limit = maxIdentityPage
	}
	return s.identities.List(ctx, role, limit)
}

// SetIdentityActive flips the active flag. Deactivation signs the identity
// out everywhere.
func (s *AdminService) SetIdentityActive(ctx context.Context, id string, active bool) error {
	if _, err := s.identities.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.identities.SetActive(ctx, id, active); err != nil {
		return err
	}
	if !active {
		if err := s.credentials.SignOut(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("user_id", id).Msg("failed to sign out deactivated identity")
		}
	}
	s.log.Info().Str("user_id", id).Bool("active", active).Msg("identity status changed")
	return nil
}
