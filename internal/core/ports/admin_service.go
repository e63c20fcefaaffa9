package ports

import (
	"context"

	"github.com/clikenova/storefront/internal/core/domain"
)

// PlatformOverview is the admin dashboard summary.
type PlatformOverview struct {
	IdentitiesByRole   map[domain.Role]int64
	TotalIdentities    int64
	Products           int64
	Purchases          int64
	PendingWithdrawals int
}

// AdminService covers platform administration.
type AdminService interface {
	Overview(ctx context.Context) (*PlatformOverview, error)
	Identities(ctx context.Context, role domain.Role, limit int) ([]*domain.Identity, error)
	// SetIdentityActive signs every session of a deactivated identity out.
	SetIdentityActive(ctx context.Context, id string, active bool) error
}
