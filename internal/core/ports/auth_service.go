package ports

import (
	"context"
	"time"

	"github.com/clikenova/storefront/internal/core/domain"
)

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Phone    string
}

// AuthResult is returned by a successful sign-up or sign-in.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	SessionID string
	Identity  *domain.Identity
	// Dashboard is where the client should land.
	Dashboard string
}

// AuthService implements the credential flows. Failures are *domain.AuthError
// values so callers can tell a bad password from a missing profile.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
}
