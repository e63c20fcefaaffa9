package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clikenova/storefront/internal/api/metrics"
	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

// IdempotencyHeader names the header that makes order placement replayable.
const IdempotencyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	service ports.CheckoutService
}

func NewCheckoutHandler(service ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// ApplyCoupon handles POST /v1/checkout/coupon.
//
// @Summary      Validate a coupon code
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body      couponRequest  true  "Coupon code"
// @Success      200   {object}  couponResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/checkout/coupon [post]
func (h *CheckoutHandler) ApplyCoupon(c echo.Context) error {
	var req couponRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	coupon, err := h.service.ApplyCoupon(c.Request().Context(), req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrCouponRejected) {
			metrics.CouponChecksTotal.WithLabelValues("rejected").Inc()
		}
		return err
	}
	metrics.CouponChecksTotal.WithLabelValues("accepted").Inc()
	return c.JSON(http.StatusOK, toCouponResponse(coupon))
}

// Quote handles POST /v1/checkout/quote.
//
// @Summary      Price a product
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body      quoteRequest  true  "Product and optional coupon"
// @Success      200   {object}  quoteResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/checkout/quote [post]
func (h *CheckoutHandler) Quote(c echo.Context) error {
	var req quoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	q, err := h.service.Quote(c.Request().Context(), ports.QuoteInput{
		ProductID:  req.ProductID,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuoteResponse(q))
}

// PlaceOrder handles POST /v1/checkout/orders. A repeated Idempotency-Key
// returns the original order with 200 instead of 201.
//
// @Summary      Place an order
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Replay key"
// @Param        body             body      placeOrderRequest  true   "Order"
// @Success      201              {object}  orderResponse
// @Success      200              {object}  orderResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/checkout/orders [post]
func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
	var req placeOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	res, err := h.service.PlaceOrder(c.Request().Context(), sess, ports.PlaceOrderInput{
		ProductID:      req.ProductID,
		CouponCode:     req.CouponCode,
		ReferralCode:   req.ReferralCode,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: c.Request().Header.Get(IdempotencyHeader),
		Billing:        toBilling(req.Billing),
	})
	if err != nil {
		return err
	}

	resp := orderResponse{
		Purchase: toPurchaseResponse(res.Purchase),
		Replayed: res.Replayed,
	}
	if res.Quote != nil {
		resp.Quote = toQuoteResponse(res.Quote)
	}

	status := http.StatusCreated
	result := "created"
	if res.Replayed {
		status = http.StatusOK
		result = "replayed"
	}
	metrics.OrdersPlacedTotal.WithLabelValues(result).Inc()
	return c.JSON(status, resp)
}

// Purchases handles GET /v1/student/purchases.
//
// @Summary      List my purchases
// @Tags         student
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listPurchasesResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/student/purchases [get]
func (h *CheckoutHandler) Purchases(c echo.Context) error {
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	items, err := h.service.Purchases(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}

	out := make([]purchaseResponse, len(items))
	for i, p := range items {
		out[i] = toPurchaseResponse(p)
	}
	return c.JSON(http.StatusOK, listPurchasesResponse{Data: out})
}
