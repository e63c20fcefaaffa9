package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clikenova/storefront/internal/api/metrics"
	"github.com/clikenova/storefront/internal/core/access"
	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

// Guard admits the request when the session is authenticated with one of
// roles; no roles admits any authenticated identity. Rejections carry the
// location the client should navigate to.
func Guard(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st := domain.SessionState{Status: domain.SessionAnonymous}
			if s, ok := c.Get(ContextSession).(ports.Session); ok {
				st = s.State()
			}

			d := access.Decide(st, roles)
			metrics.GuardDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()

			switch d.Outcome {
			case access.Render:
				return next(c)
			case access.Pending:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, errorBody{Error: "session is still being resolved"})
			case access.RedirectLogin:
				return c.JSON(http.StatusUnauthorized, errorBody{Error: "authentication required", Redirect: d.Location})
			default:
				return c.JSON(http.StatusForbidden, errorBody{Error: "access forbidden", Redirect: d.Location})
			}
		}
	}
}
