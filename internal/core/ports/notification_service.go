package ports

import (
	"context"

	"github.com/clikenova/storefront/internal/core/domain"
)

// NotificationInput is a notification before it gets an ID.
type NotificationInput struct {
	Kind      domain.NotificationKind
	Title     string
	Body      string
	ActionURL string
}

// NotificationService manages the notification list of a session. For an
// anonymous session the list is local to the session; otherwise it mirrors
// the owner's records.
type NotificationService interface {
	Add(ctx context.Context, sess Session, in NotificationInput) (*domain.Notification, error)
	// Notify persists a notification for a user that may not be online.
	Notify(ctx context.Context, ownerID string, in NotificationInput) error
	MarkRead(ctx context.Context, sess Session, id string) error
	Clear(ctx context.Context, sess Session) error
	// Load replaces the session list with the most recent stored records.
	Load(ctx context.Context, sess Session) ([]domain.Notification, error)
	List(sess Session) []domain.Notification
	// UnreadCount counts the owner's unread notifications, loading the
	// stored list first when this session has not seen it yet.
	UnreadCount(ctx context.Context, sess Session) (int, error)
}
