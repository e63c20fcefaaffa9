package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clikenova/storefront/internal/core/ports"
)

type AffiliateHandler struct {
	service ports.AffiliateService
}

func NewAffiliateHandler(service ports.AffiliateService) *AffiliateHandler {
	return &AffiliateHandler{service: service}
}

// Profile handles GET /v1/affiliate/profile. The profile is created on first
// access.
//
// @Summary      My affiliate profile
// @Tags         affiliate
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  affiliateResponse
// @Router       /v1/affiliate/profile [get]
func (h *AffiliateHandler) Profile(c echo.Context) error {
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	a, err := h.service.Profile(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAffiliateResponse(a))
}

// Stats handles GET /v1/affiliate/stats.
//
// @Summary      Affiliate dashboard figures
// @Tags         affiliate
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  affiliateStatsResponse
// @Router       /v1/affiliate/stats [get]
func (h *AffiliateHandler) Stats(c echo.Context) error {
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	st, err := h.service.Stats(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, affiliateStatsResponse{
		TotalSales:         st.TotalSales,
		PaidCommissions:    money(st.PaidCommissions),
		PendingCommissions: money(st.PendingCommissions),
	})
}

// Sales handles GET /v1/affiliate/sales.
//
// @Summary      My referral sales
// @Tags         affiliate
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listSalesResponse
// @Router       /v1/affiliate/sales [get]
func (h *AffiliateHandler) Sales(c echo.Context) error {
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	sales, err := h.service.Sales(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}

	out := make([]affiliateSaleResponse, len(sales))
	for i, s := range sales {
		out[i] = toSaleResponse(s)
	}
	return c.JSON(http.StatusOK, listSalesResponse{Data: out})
}

// Link handles GET /v1/affiliate/links/:product_id.
//
// @Summary      Referral link for a product
// @Tags         affiliate
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  path      string  true  "Product ID"
// @Success      200         {object}  referralLinkResponse
// @Failure      404         {object}  errorResponse
// @Router       /v1/affiliate/links/{product_id} [get]
func (h *AffiliateHandler) Link(c echo.Context) error {
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	productID := c.Param("product_id")
	link, err := h.service.ReferralLink(c.Request().Context(), identity.ID, productID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, referralLinkResponse{ProductID: productID, URL: link})
}
