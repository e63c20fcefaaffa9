package ports

import (
	"context"
	"time"
)

// Credential is the result of a successful credential exchange.
type Credential struct {
	UserID string
	Email  string
}

// CredentialProvider is the hosted credential exchange. It owns passwords;
// profile data lives in the IdentityRepository.
type CredentialProvider interface {
	SignUp(ctx context.Context, email, password string) (*Credential, error)
	SignIn(ctx context.Context, email, password string) (*Credential, error)
	// SignOut invalidates every session of the user and publishes an
	// AuthSignedOut event.
	SignOut(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// AuthEventKind names a credential state change.
type AuthEventKind string

const (
	AuthSignedIn    AuthEventKind = "signed_in"
	AuthSignedOut   AuthEventKind = "signed_out"
	AuthUserDeleted AuthEventKind = "user_deleted"
)

// AuthEvent is published by the credential provider on every state change.
type AuthEvent struct {
	Kind   AuthEventKind `json:"kind"`
	UserID string        `json:"user_id"`
	At     time.Time     `json:"at"`
}

// AuthEventSource hands out subscriptions to credential state changes.
type AuthEventSource interface {
	Subscribe(ctx context.Context) (AuthSubscription, error)
}

// AuthSubscription must be closed by its owner. Events is closed after Close.
type AuthSubscription interface {
	Events() <-chan AuthEvent
	Close() error
}
