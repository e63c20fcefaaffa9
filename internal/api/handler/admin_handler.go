package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Overview handles GET /v1/admin/overview.
//
// @Summary      Platform overview
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  overviewResponse
// @Router       /v1/admin/overview [get]
func (h *AdminHandler) Overview(c echo.Context) error {
	o, err := h.service.Overview(c.Request().Context())
	if err != nil {
		return err
	}

	byRole := make(map[string]int64, len(o.IdentitiesByRole))
	for r, n := range o.IdentitiesByRole {
		byRole[string(r)] = n
	}
	return c.JSON(http.StatusOK, overviewResponse{
		IdentitiesByRole:   byRole,
		TotalIdentities:    o.TotalIdentities,
		Products:           o.Products,
		Purchases:          o.Purchases,
		PendingWithdrawals: o.PendingWithdrawals,
	})
}

// Identities handles GET /v1/admin/identities.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role   query     string  false  "Filter by role"
// @Param        limit  query     int     false  "Maximum number of accounts"
// @Success      200    {object}  listIdentitiesResponse
// @Failure      400    {object}  errorResponse
// @Router       /v1/admin/identities [get]
func (h *AdminHandler) Identities(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	items, err := h.service.Identities(c.Request().Context(), domain.Role(c.QueryParam("role")), limit)
	if err != nil {
		return err
	}

	out := make([]identityResponse, len(items))
	for i, id := range items {
		out[i] = toIdentityResponse(id)
	}
	return c.JSON(http.StatusOK, listIdentitiesResponse{Data: out})
}

// SetActive handles PATCH /v1/admin/identities/:id. Deactivating an account
// signs out all of its sessions.
//
// @Summary      Activate or deactivate an account
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string            true  "Identity ID"
// @Param        body  body  setActiveRequest  true  "Account state"
// @Success      204
// @Failure      404   {object}  errorResponse
// @Router       /v1/admin/identities/{id} [patch]
func (h *AdminHandler) SetActive(c echo.Context) error {
	var req setActiveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.service.SetIdentityActive(c.Request().Context(), c.Param("id"), *req.Active); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
