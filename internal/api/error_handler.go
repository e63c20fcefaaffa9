package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clikenova/storefront/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Redirect
// is set when the client should navigate elsewhere, e.g. to the login page.
type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ae *domain.AuthError
	if errors.As(err, &ae) {
		return resolveAuthError(ae, log, c)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrSessionRevoked),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required", Redirect: domain.PathLogin}
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrWithdrawalNotAllowed):
		return http.StatusForbidden, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrAccountDisabled):
		return http.StatusForbidden, errorResponse{Error: "account disabled", Redirect: domain.PathLogin}

	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidNotificationKind):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}

	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, errorResponse{Error: "product not found"}
	case errors.Is(err, domain.ErrPurchaseNotFound):
		return http.StatusNotFound, errorResponse{Error: "purchase not found"}
	case errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound, errorResponse{Error: "notification not found"}
	case errors.Is(err, domain.ErrIdentityNotFound):
		return http.StatusNotFound, errorResponse{Error: "account not found"}
	case errors.Is(err, domain.ErrAffiliateNotFound):
		return http.StatusNotFound, errorResponse{Error: "affiliate not found"}
	case errors.Is(err, domain.ErrWithdrawalNotFound):
		return http.StatusNotFound, errorResponse{Error: "withdrawal not found"}

	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, errorResponse{Error: "email already registered"}
	case errors.Is(err, domain.ErrRequestInFlight):
		c.Response().Header().Set("Retry-After", "1")
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrCouponRejected):
		return http.StatusUnprocessableEntity, errorResponse{Error: "coupon rejected"}
	case errors.Is(err, domain.ErrInsufficientBalance), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}

	case errors.Is(err, domain.ErrPersistence):
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("record store failure")
		return http.StatusServiceUnavailable, errorResponse{Error: "could not save changes, try again"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

// resolveAuthError renders a failed sign-up or sign-in with a message
// specific to the failure kind.
func resolveAuthError(ae *domain.AuthError, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	switch ae.Kind {
	case domain.AuthErrCredential:
		switch {
		case errors.Is(ae, domain.ErrEmailTaken):
			return http.StatusConflict, errorResponse{Error: "email already registered"}
		case errors.Is(ae, domain.ErrInvalidRole):
			return http.StatusBadRequest, errorResponse{Error: "invalid role"}
		case errors.Is(ae, domain.ErrAccountDisabled):
			return http.StatusForbidden, errorResponse{Error: "account disabled"}
		}
		return http.StatusUnauthorized, errorResponse{Error: "invalid email or password"}
	case domain.AuthErrMissingProfile:
		return http.StatusUnauthorized, errorResponse{Error: "account has no profile, contact support"}
	case domain.AuthErrNetwork:
		log.Warn().Err(ae).Str("path", c.Path()).Msg("credential service unavailable")
		return http.StatusServiceUnavailable, errorResponse{Error: "authentication service unavailable, try again"}
	default:
		log.Error().Err(ae).Str("path", c.Path()).Msg("profile could not be stored")
		return http.StatusInternalServerError, errorResponse{Error: "could not create account profile"}
	}
}
