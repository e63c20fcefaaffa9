package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
	"github.com/clikenova/storefront/internal/core/session"
)

// SessionHeader carries the anonymous session ID between requests.
const SessionHeader = "X-Session-ID"

// Context keys set by Auth.
const (
	ContextSession = "session"
	ContextUserID  = "user_id"
	ContextRole    = "role"
)

// SessionResolver maps request credentials to a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, id, userID string) (*session.Session, error)
	Anonymous(id string) *session.Session
	// Keep is called after the handler ran with an anonymous session.
	Keep(s *session.Session)
}

type errorBody struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// Auth attaches the caller's session to the context. A request without an
// Authorization header gets the anonymous session named by SessionHeader, or
// a new one. A bearer token must carry the sid and sub claims of a session
// that is still open.
func Auth(jwtSecret string, sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				s := sessions.Anonymous(c.Request().Header.Get(SessionHeader))
				c.Response().Header().Set(SessionHeader, s.ID())
				setSession(c, s)
				err := next(c)
				sessions.Keep(s)
				return err
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sid, _ := claims["sid"].(string)
			sub, _ := claims["sub"].(string)
			if sid == "" || sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing session claims")
			}

			s, err := sessions.Resolve(c.Request().Context(), sid, sub)
			if err != nil {
				if errors.Is(err, domain.ErrSessionRevoked) || errors.Is(err, domain.ErrAccountDisabled) {
					return c.JSON(http.StatusUnauthorized, errorBody{Error: err.Error(), Redirect: domain.PathLogin})
				}
				return err
			}

			setSession(c, s)
			return next(c)
		}
	}
}

func setSession(c echo.Context, s ports.Session) {
	st := s.State()
	c.Set(ContextSession, s)
	c.Set(ContextRole, string(st.Role()))
	if st.Identity != nil {
		c.Set(ContextUserID, st.Identity.ID)
	}
}
