package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clikenova/storefront/internal/api/middleware"
	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

// ctxSession returns the session attached by the Auth middleware. Its absence
// means the route was registered outside the middleware chain.
func ctxSession(c echo.Context) (ports.Session, error) {
	s, ok := c.Get(middleware.ContextSession).(ports.Session)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return s, nil
}

// ctxIdentity returns the session and its identity, or
// domain.ErrUnauthenticated for an anonymous session.
func ctxIdentity(c echo.Context) (ports.Session, *domain.Identity, error) {
	s, err := ctxSession(c)
	if err != nil {
		return nil, nil, err
	}
	st := s.State()
	if st.Status != domain.SessionAuthenticated || st.Identity == nil {
		return nil, nil, domain.ErrUnauthenticated
	}
	return s, st.Identity, nil
}

// viewerID is the authenticated user ID, or "" for anonymous callers.
func viewerID(c echo.Context) string {
	id, _ := c.Get(middleware.ContextUserID).(string)
	return id
}
