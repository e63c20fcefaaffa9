package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidRole        = errors.New("invalid role")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidInput       = errors.New("invalid input")

	ErrProductNotFound  = errors.New("product not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrCouponRejected   = errors.New("coupon rejected")
	ErrInvalidAmount    = errors.New("invalid amount")

	ErrNotificationNotFound    = errors.New("notification not found")
	ErrInvalidNotificationKind = errors.New("invalid notification kind")

	ErrAffiliateNotFound    = errors.New("affiliate not found")
	ErrDuplicateSale        = errors.New("affiliate sale already recorded")
	ErrWithdrawalNotFound   = errors.New("withdrawal not found")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrWithdrawalNotAllowed = errors.New("role cannot request withdrawals")
	ErrInvalidTransition    = errors.New("invalid status transition")

	// ErrRequestInFlight means an identical or conflicting request of the same
	// user is still being processed.
	ErrRequestInFlight = errors.New("a conflicting request is still being processed")

	// ErrPersistence marks a failed insert/update/delete against the record store.
	ErrPersistence = errors.New("persistence failure")
)

// AuthErrorKind classifies failures of the sign-up / sign-in flows so the
// caller can render a specific message.
type AuthErrorKind string

const (
	AuthErrCredential     AuthErrorKind = "credential"
	AuthErrNetwork        AuthErrorKind = "network"
	AuthErrMissingProfile AuthErrorKind = "missing_profile"
	AuthErrPersistence    AuthErrorKind = "persistence"
)

// AuthError is returned by the authentication use cases.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError wraps err with the given kind.
func NewAuthError(kind AuthErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}
