// Package backend adapts the hosted credential service: password checks,
// account lifecycle and the auth-change event stream.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
	mongostore "github.com/clikenova/storefront/internal/infrastructure/db/mongo"
)

// CredentialStore persists password hashes.
type CredentialStore interface {
	Create(ctx context.Context, c *mongostore.CredentialRecord) error
	// FindByEmail returns domain.ErrInvalidCredentials for unknown emails.
	FindByEmail(ctx context.Context, email string) (*mongostore.CredentialRecord, error)
	Delete(ctx context.Context, userID string) error
}

// EventPublisher broadcasts auth state changes to every replica.
type EventPublisher interface {
	Publish(ctx context.Context, ev ports.AuthEvent) error
}

// CredentialProvider implements ports.CredentialProvider with bcrypt hashes.
type CredentialProvider struct {
	store  CredentialStore
	events EventPublisher
	cost   int
	log    zerolog.Logger
	now    func() time.Time
}

// NewCredentialProvider creates a provider. A zero cost uses bcrypt.DefaultCost.
func NewCredentialProvider(store CredentialStore, events EventPublisher, cost int, log zerolog.Logger) *CredentialProvider {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &CredentialProvider{store: store, events: events, cost: cost, log: log, now: time.Now}
}

func (p *CredentialProvider) SignUp(ctx context.Context, email, password string) (*ports.Credential, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec := &mongostore.CredentialRecord{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	}
	if err := p.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	p.publish(ctx, ports.AuthSignedIn, rec.UserID)
	return &ports.Credential{UserID: rec.UserID, Email: rec.Email}, nil
}

func (p *CredentialProvider) SignIn(ctx context.Context, email, password string) (*ports.Credential, error) {
	rec, err := p.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	p.publish(ctx, ports.AuthSignedIn, rec.UserID)
	return &ports.Credential{UserID: rec.UserID, Email: rec.Email}, nil
}

// SignOut revokes every session of the user. Revocation travels on the event
// stream, so a publish failure is returned to the caller.
func (p *CredentialProvider) SignOut(ctx context.Context, userID string) error {
	return p.events.Publish(ctx, ports.AuthEvent{Kind: ports.AuthSignedOut, UserID: userID, At: p.now().UTC()})
}

func (p *CredentialProvider) DeleteUser(ctx context.Context, userID string) error {
	if err := p.store.Delete(ctx, userID); err != nil {
		return err
	}
	p.publish(ctx, ports.AuthUserDeleted, userID)
	return nil
}

func (p *CredentialProvider) publish(ctx context.Context, kind ports.AuthEventKind, userID string) {
	if err := p.events.Publish(ctx, ports.AuthEvent{Kind: kind, UserID: userID, At: p.now().UTC()}); err != nil {
		p.log.Warn().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("failed to publish auth event")
	}
}
