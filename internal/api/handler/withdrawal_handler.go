package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

// WithdrawalHandler serves payout requests for producers and affiliates and
// the review queue for admins.
type WithdrawalHandler struct {
	service ports.WithdrawalService
}

func NewWithdrawalHandler(service ports.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{service: service}
}

// Request handles POST /v1/withdrawals.
//
// @Summary      Request a payout
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      withdrawalRequest  true  "Payout request"
// @Success      201   {object}  withdrawalResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/withdrawals [post]
func (h *WithdrawalHandler) Request(c echo.Context) error {
	var req withdrawalRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be a decimal amount")
	}

	w, err := h.service.Request(c.Request().Context(), ports.WithdrawalInput{
		UserID:        identity.ID,
		Role:          identity.Role,
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toWithdrawalResponse(w))
}

// List handles GET /v1/withdrawals.
//
// @Summary      My payout requests
// @Tags         withdrawals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listWithdrawalsResponse
// @Router       /v1/withdrawals [get]
func (h *WithdrawalHandler) List(c echo.Context) error {
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWithdrawalList(items))
}

// Balance handles GET /v1/withdrawals/balance.
//
// @Summary      Withdrawable balance
// @Tags         withdrawals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  balanceResponse
// @Router       /v1/withdrawals/balance [get]
func (h *WithdrawalHandler) Balance(c echo.Context) error {
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	b, err := h.service.Balance(c.Request().Context(), identity.ID, identity.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balanceResponse{Available: money(b)})
}

// Queue handles GET /v1/admin/withdrawals.
//
// @Summary      Payout review queue
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending, approved, processing, paid or rejected"
// @Success      200     {object}  listWithdrawalsResponse
// @Failure      400     {object}  errorResponse
// @Router       /v1/admin/withdrawals [get]
func (h *WithdrawalHandler) Queue(c echo.Context) error {
	status := domain.WithdrawalStatus(c.QueryParam("status"))
	switch status {
	case "", domain.WithdrawalPending, domain.WithdrawalApproved, domain.WithdrawalProcessing,
		domain.WithdrawalPaid, domain.WithdrawalRejected:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown withdrawal status")
	}

	items, err := h.service.Queue(c.Request().Context(), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWithdrawalList(items))
}

// Transition handles POST /v1/admin/withdrawals/:id/status.
//
// @Summary      Move a payout request
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Withdrawal ID"
// @Param        body  body      transitionRequest  true  "Target status"
// @Success      200   {object}  withdrawalResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/withdrawals/{id}/status [post]
func (h *WithdrawalHandler) Transition(c echo.Context) error {
	var req transitionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	w, err := h.service.Transition(c.Request().Context(), c.Param("id"), domain.WithdrawalStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWithdrawalResponse(w))
}
