package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clikenova/storefront/internal/api/metrics"
	"github.com/clikenova/storefront/internal/core/access"
	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

type AuthHandler struct {
	authService   ports.AuthService
	notifications ports.NotificationService
}

func NewAuthHandler(authService ports.AuthService, notifications ports.NotificationService) *AuthHandler {
	return &AuthHandler{authService: authService, notifications: notifications}
}

// Register creates a new account and signs it in.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Phone:    req.Phone,
	})
	if err != nil {
		observeAuthFailure(err)
		return err
	}

	metrics.SessionsOpenedTotal.Inc()
	return c.JSON(http.StatusCreated, toAuthResponse(res))
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		observeAuthFailure(err)
		return err
	}

	metrics.SessionsOpenedTotal.Inc()
	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// Logout ends the current session.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), sess.ID()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Session reports the resolution state of the caller's session.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /v1/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	unread, err := h.notifications.UnreadCount(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	st := sess.State()
	resp := sessionResponse{
		SessionID: sess.ID(),
		Status:    string(st.Status),
		Unread:    unread,
	}
	if st.Identity != nil {
		u := toIdentityResponse(st.Identity)
		resp.User = &u
		resp.Dashboard = domain.DashboardPath(st.Identity.Role)
	}
	return c.JSON(http.StatusOK, resp)
}

// Navigation decides what the caller gets when opening a frontend route.
//
// @Summary      Resolve a frontend route
// @Tags         auth
// @Produce      json
// @Param        path  query     string  true  "Frontend path, e.g. /admin/dashboard"
// @Success      200   {object}  navigationResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/navigation [get]
func (h *AuthHandler) Navigation(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" || path[0] != '/' {
		return echo.NewHTTPError(http.StatusBadRequest, "path must be an absolute frontend path")
	}
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	d := access.Resolve(path, sess.State())
	return c.JSON(http.StatusOK, navigationResponse{
		Path:     path,
		Outcome:  string(d.Outcome),
		Location: d.Location,
	})
}

func observeAuthFailure(err error) {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		metrics.AuthFailuresTotal.WithLabelValues(string(ae.Kind)).Inc()
	}
}
