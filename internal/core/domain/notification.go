package domain

import "time"

// NotificationKind is the severity shown next to a notification.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationWarning NotificationKind = "warning"
	NotificationInfo    NotificationKind = "info"
)

// Valid reports whether k is a known kind.
func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationSuccess, NotificationError, NotificationWarning, NotificationInfo:
		return true
	}
	return false
}

// NotificationLimit caps the list loaded from the record store.
const NotificationLimit = 50

// Notification is a user-facing message. OwnerID is empty for local,
// unauthenticated notifications that are never persisted.
type Notification struct {
	ID        string           `json:"id"`
	OwnerID   string           `json:"owner_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Read      bool             `json:"read"`
	ActionURL string           `json:"action_url,omitempty"`
	SentAt    time.Time        `json:"sent_at"`
}
