package ports

import (
	"context"
	"time"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/inbox"
)

// SessionStore persists the session → identity pointer so that every replica
// sees the same sessions and revocations.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// Lookup returns domain.ErrSessionNotFound for unknown or expired sessions.
	Lookup(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// Session is the per-client state container: resolution state plus the
// notification list owned by the current identity.
type Session interface {
	ID() string
	State() domain.SessionState
	// Generation changes every time the identity behind the session changes.
	// Results fetched under an older generation must be discarded.
	Generation() uint64
	Inbox() *inbox.Inbox
	// ReplaceInbox installs items unless the generation moved on.
	ReplaceInbox(gen uint64, items []domain.Notification) bool
	// InboxSynced is true once ReplaceInbox succeeded for the current
	// generation.
	InboxSynced() bool
}

// SessionRegistry opens and ends authenticated sessions.
type SessionRegistry interface {
	Open(ctx context.Context, identity *domain.Identity) (Session, error)
	End(ctx context.Context, sessionID string) error
}

// IdempotencyStore remembers which purchase answered an Idempotency-Key.
// Keys are scoped to the buyer.
type IdempotencyStore interface {
	// Claim reserves key for owner. When the key was already claimed it
	// reports false with the purchase stored under it, or an empty purchaseID
	// while the first request is still placing its order.
	Claim(ctx context.Context, owner, key string) (claimed bool, purchaseID string, err error)
	// Complete records the purchase that answered a claimed key.
	Complete(ctx context.Context, owner, key, purchaseID string) error
	// Release drops a claim whose order was not placed.
	Release(ctx context.Context, owner, key string) error
}
