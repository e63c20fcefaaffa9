package ports

import (
	"context"

	"github.com/clikenova/storefront/internal/core/domain"
)

// IdentityRepository persists profile records keyed by the credential user ID.
type IdentityRepository interface {
	// Create returns domain.ErrEmailTaken when the email is already used.
	Create(ctx context.Context, identity *domain.Identity) error
	// FindByID returns domain.ErrIdentityNotFound when no profile exists.
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, role domain.Role, limit int) ([]*domain.Identity, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}
