package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/api/metrics"
	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
	"github.com/clikenova/storefront/internal/core/pricing"
)

type stubCheckout struct {
	coupons map[string]*domain.Coupon
	product *domain.Product
	taxRate decimal.Decimal
	placed  []ports.PlaceOrderInput
	orders  map[string]*ports.OrderResult
}

func newStubCheckout() *stubCheckout {
	return &stubCheckout{
		coupons: map[string]*domain.Coupon{
			"DESCONTO10": {Code: "DESCONTO10", Kind: domain.DiscountPercentage, Discount: decimal.NewFromInt(10)},
		},
		product: &domain.Product{
			ID:       "p-go",
			Title:    "Go Fundamentals",
			Price:    decimal.RequireFromString("149.90"),
			Currency: "BRL",
			Active:   true,
		},
		taxRate: decimal.RequireFromString("0.10"),
		orders:  make(map[string]*ports.OrderResult),
	}
}

func (s *stubCheckout) ApplyCoupon(_ context.Context, code string) (*domain.Coupon, error) {
	if c, ok := s.coupons[code]; ok {
		return c, nil
	}
	return nil, domain.ErrCouponRejected
}

func (s *stubCheckout) Quote(ctx context.Context, in ports.QuoteInput) (*ports.Quote, error) {
	if in.ProductID != s.product.ID {
		return nil, domain.ErrProductNotFound
	}
	var coupon *domain.Coupon
	if in.CouponCode != "" {
		c, err := s.ApplyCoupon(ctx, in.CouponCode)
		if err != nil {
			return nil, err
		}
		coupon = c
	}
	b, err := pricing.Quote(s.product.Price, coupon, s.taxRate)
	if err != nil {
		return nil, err
	}
	return &ports.Quote{Product: s.product, Coupon: coupon, Breakdown: b, Currency: s.product.Currency}, nil
}

func (s *stubCheckout) PlaceOrder(ctx context.Context, sess ports.Session, in ports.PlaceOrderInput) (*ports.OrderResult, error) {
	if in.IdempotencyKey != "" {
		if prev, ok := s.orders[in.IdempotencyKey]; ok {
			replay := *prev
			replay.Replayed = true
			return &replay, nil
		}
	}
	st := sess.State()
	if st.Identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	q, err := s.Quote(ctx, ports.QuoteInput{ProductID: in.ProductID, CouponCode: in.CouponCode})
	if err != nil {
		return nil, err
	}
	s.placed = append(s.placed, in)
	res := &ports.OrderResult{
		Purchase: &domain.Purchase{
			ID:              "pur-1",
			UserID:          st.Identity.ID,
			ProductID:       in.ProductID,
			PricePaid:       q.Breakdown.Total,
			DiscountApplied: q.Breakdown.Discount,
			CouponCode:      in.CouponCode,
			ReferralCode:    in.ReferralCode,
			Currency:        q.Currency,
			PaymentMethod:   in.PaymentMethod,
			Status:          domain.PaymentPending,
			PurchasedAt:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		},
		Quote: q,
	}
	if in.IdempotencyKey != "" {
		s.orders[in.IdempotencyKey] = res
	}
	return res, nil
}

func (s *stubCheckout) Purchases(context.Context, string) ([]*domain.Purchase, error) {
	return nil, nil
}

const orderBody = `{
	"product_id": "p-go",
	"coupon_code": "DESCONTO10",
	"ref": "AFF123",
	"payment_method": "pix",
	"billing": {
		"name": "Ana", "email": "ana@example.com", "address": "Rua A, 1",
		"city": "Recife", "postal_code": "50000-000", "country": "BR"
	}
}`

func TestCheckoutHandler_ApplyCoupon(t *testing.T) {
	h := NewCheckoutHandler(newStubCheckout())
	before := testutil.ToFloat64(metrics.CouponChecksTotal.WithLabelValues("accepted"))

	c, rec := newContext(http.MethodPost, "/v1/checkout/coupon", `{"code":"DESCONTO10"}`, nil)
	if err := h.ApplyCoupon(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp couponResponse
	decode(t, rec, &resp)
	if resp.Kind != "percentage" || resp.Discount != "10" {
		t.Fatalf("unexpected coupon: %+v", resp)
	}
	if got := testutil.ToFloat64(metrics.CouponChecksTotal.WithLabelValues("accepted")); got != before+1 {
		t.Fatalf("accepted coupon counter not incremented")
	}
}

func TestCheckoutHandler_ApplyCoupon_Rejected(t *testing.T) {
	h := NewCheckoutHandler(newStubCheckout())

	c, _ := newContext(http.MethodPost, "/v1/checkout/coupon", `{"code":"BOGUS"}`, nil)
	if err := h.ApplyCoupon(c); !errors.Is(err, domain.ErrCouponRejected) {
		t.Fatalf("expected ErrCouponRejected, got %v", err)
	}
}

func TestCheckoutHandler_Quote(t *testing.T) {
	h := NewCheckoutHandler(newStubCheckout())

	c, rec := newContext(http.MethodPost, "/v1/checkout/quote", `{"product_id":"p-go","coupon_code":"DESCONTO10"}`, nil)
	if err := h.Quote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp quoteResponse
	decode(t, rec, &resp)
	// 149.90 - 10% = 134.91; +10% tax = 148.401 → 148.40
	if resp.Subtotal != "149.90" || resp.Discount != "14.99" || resp.DiscountedPrice != "134.91" {
		t.Fatalf("unexpected discount lines: %+v", resp)
	}
	if resp.Tax != "13.49" || resp.Total != "148.40" || resp.CouponCode != "DESCONTO10" {
		t.Fatalf("unexpected totals: %+v", resp)
	}
}

func TestCheckoutHandler_PlaceOrder_Replay(t *testing.T) {
	svc := newStubCheckout()
	h := NewCheckoutHandler(svc)

	c, rec := newContext(http.MethodPost, "/v1/checkout/orders", orderBody, signedIn(ana))
	c.Request().Header.Set(IdempotencyHeader, "key-1")
	if err := h.PlaceOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var first orderResponse
	decode(t, rec, &first)
	if first.Replayed || first.Purchase.ReferralCode != "AFF123" || first.Purchase.PricePaid != "148.40" {
		t.Fatalf("unexpected order: %+v", first)
	}

	c, rec = newContext(http.MethodPost, "/v1/checkout/orders", orderBody, signedIn(ana))
	c.Request().Header.Set(IdempotencyHeader, "key-1")
	if err := h.PlaceOrder(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
	var second orderResponse
	decode(t, rec, &second)
	if !second.Replayed || second.Purchase.ID != first.Purchase.ID {
		t.Fatalf("replay must return the original purchase, got %+v", second)
	}
	if len(svc.placed) != 1 {
		t.Fatalf("expected one order to be placed, got %d", len(svc.placed))
	}
}

func TestCheckoutHandler_PlaceOrder_InvalidPaymentMethod(t *testing.T) {
	h := NewCheckoutHandler(newStubCheckout())

	body := `{"product_id":"p-go","payment_method":"cash","billing":{"name":"Ana","email":"ana@example.com","address":"x","city":"y","postal_code":"z","country":"BR"}}`
	c, _ := newContext(http.MethodPost, "/v1/checkout/orders", body, signedIn(ana))
	if code := httpStatus(h.PlaceOrder(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestCheckoutHandler_PlaceOrder_MissingBilling(t *testing.T) {
	h := NewCheckoutHandler(newStubCheckout())

	c, _ := newContext(http.MethodPost, "/v1/checkout/orders", `{"product_id":"p-go","payment_method":"pix"}`, signedIn(ana))
	if code := httpStatus(h.PlaceOrder(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}
