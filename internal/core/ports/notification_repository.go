package ports

import (
	"context"

	"github.com/clikenova/storefront/internal/core/domain"
)

// NotificationRepository persists notifications. Every mutation is scoped to
// the owner so that one account can never touch another's records.
type NotificationRepository interface {
	// Insert stores n and returns the stored record with its server ID.
	Insert(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	// ListRecent returns at most limit records, newest first.
	ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, ownerID string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}
