package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

// AuthService implements registration, login and logout on top of the
// credential provider, the profile records and the session registry.
type AuthService struct {
	credentials ports.CredentialProvider
	identities  ports.IdentityRepository
	sessions    ports.SessionRegistry
	jwtSecret   string
	tokenTTL    time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

func NewAuthService(
	credentials ports.CredentialProvider,
	identities ports.IdentityRepository,
	sessions ports.SessionRegistry,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials: credentials,
		identities:  identities,
		sessions:    sessions,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		log:         log,
		now:         time.Now,
	}
}

// Register creates the credential and then the profile. If the profile cannot
// be stored the credential is signed back out so the caller never ends up
// authenticated without a profile.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" {
		return nil, domain.NewAuthError(domain.AuthErrCredential, domain.ErrInvalidCredentials)
	}
	// Admins are provisioned, never self-registered.
	if !in.Role.Valid() || in.Role == domain.RoleAdmin {
		return nil, domain.NewAuthError(domain.AuthErrCredential, domain.ErrInvalidRole)
	}

	cred, err := s.credentials.SignUp(ctx, email, in.Password)
	if err != nil {
		return nil, classifyCredentialError(err)
	}

	now := s.now().UTC()
	identity := &domain.Identity{
		ID:             cred.UserID,
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		Role:           in.Role,
		Active:         true,
		Phone:          in.Phone,
		RegisteredAt:   now,
		LastActivityAt: now,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		s.log.Error().Err(err).Str("user_id", cred.UserID).Msg("failed to create profile, rolling back credential")
		s.rollback(ctx, cred.UserID)
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.NewAuthError(domain.AuthErrCredential, err)
		}
		return nil, domain.NewAuthError(domain.AuthErrPersistence, err)
	}

	res, err := s.open(ctx, identity)
	if err != nil {
		s.signOut(ctx, cred.UserID)
		return nil, err
	}

	s.log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("identity registered")
	return res, nil
}

// Login exchanges credentials and loads the profile. A credential without a
// profile, or with a deactivated one, is signed back out.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewAuthError(domain.AuthErrCredential, domain.ErrInvalidCredentials)
	}

	cred, err := s.credentials.SignIn(ctx, email, password)
	if err != nil {
		return nil, classifyCredentialError(err)
	}

	identity, err := s.identities.FindByID(ctx, cred.UserID)
	if err != nil {
		s.signOut(ctx, cred.UserID)
		if errors.Is(err, domain.ErrIdentityNotFound) {
			s.log.Warn().Str("user_id", cred.UserID).Msg("authenticated without profile")
			return nil, domain.NewAuthError(domain.AuthErrMissingProfile, err)
		}
		return nil, domain.NewAuthError(domain.AuthErrNetwork, err)
	}
	if !identity.Active {
		s.signOut(ctx, cred.UserID)
		return nil, domain.NewAuthError(domain.AuthErrCredential, domain.ErrAccountDisabled)
	}

	res, err := s.open(ctx, identity)
	if err != nil {
		s.signOut(ctx, cred.UserID)
		return nil, err
	}
	return res, nil
}

// Logout ends one session. Other sessions of the same user stay valid.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrSessionNotFound
	}
	return s.sessions.End(ctx, sessionID)
}

func (s *AuthService) open(ctx context.Context, identity *domain.Identity) (*ports.AuthResult, error) {
	sess, err := s.sessions.Open(ctx, identity)
	if err != nil {
		return nil, domain.NewAuthError(domain.AuthErrNetwork, err)
	}

	expires := s.now().Add(s.tokenTTL)
	token, err := s.generateToken(identity, sess.ID(), expires)
	if err != nil {
		s.endSession(ctx, sess.ID())
		return nil, err
	}

	return &ports.AuthResult{
		Token:     token,
		ExpiresAt: expires,
		SessionID: sess.ID(),
		Identity:  identity,
		Dashboard: domain.DashboardPath(identity.Role),
	}, nil
}

func (s *AuthService) endSession(ctx context.Context, sessionID string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.sessions.End(ctx, sessionID); err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("failed to end unused session")
	}
}

func (s *AuthService) signOut(ctx context.Context, userID string) {
	// The compensation must run even if the request was cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := s.credentials.SignOut(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("compensating sign-out failed")
	}
}

// rollback undoes a sign-up whose profile could not be stored.
func (s *AuthService) rollback(ctx context.Context, userID string) {
	s.signOut(ctx, userID)
	if err := s.credentials.DeleteUser(context.WithoutCancel(ctx), userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to delete orphan credential")
	}
}

func (s *AuthService) generateToken(identity *domain.Identity, sessionID string, expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  identity.ID,
		"sid":  sessionID,
		"role": string(identity.Role),
		"name": identity.Name,
		"iat":  s.now().Unix(),
		"exp":  expires.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func classifyCredentialError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrEmailTaken):
		return domain.NewAuthError(domain.AuthErrCredential, err)
	default:
		return domain.NewAuthError(domain.AuthErrNetwork, err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
