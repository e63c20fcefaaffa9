package handler

import (
	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
	"github.com/clikenova/storefront/internal/core/pricing"
)

// money renders an amount with exactly two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(pricing.CentPlaces)
}

// --- Service result → HTTP response ---

func toIdentityResponse(i *domain.Identity) identityResponse {
	return identityResponse{
		ID:           i.ID,
		Name:         i.Name,
		Email:        i.Email,
		Role:         string(i.Role),
		AvatarURL:    i.AvatarURL,
		Phone:        i.Phone,
		Active:       i.Active,
		RegisteredAt: i.RegisteredAt.UTC(),
	}
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt.UTC(),
		SessionID: r.SessionID,
		User:      toIdentityResponse(r.Identity),
		Redirect:  r.Dashboard,
	}
}

func toProductResponse(p *domain.Product) productResponse {
	out := productResponse{
		ID:            p.ID,
		ProducerID:    p.ProducerID,
		Title:         p.Title,
		Description:   p.Description,
		Kind:          string(p.Kind),
		Price:         money(p.Price),
		Currency:      p.Currency,
		Active:        p.Active,
		Featured:      p.Featured,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		Tags:          p.Tags,
		RatingAverage: p.RatingAverage,
		RatingCount:   p.RatingCount,
		SalesCount:    p.SalesCount,
		CreatedAt:     p.CreatedAt.UTC(),
	}
	if p.OriginalPrice != nil {
		out.OriginalPrice = money(*p.OriginalPrice)
	}
	return out
}

func toProductList(items []*domain.Product) listProductsResponse {
	out := make([]productResponse, len(items))
	for i, p := range items {
		out[i] = toProductResponse(p)
	}
	return listProductsResponse{Data: out}
}

func toCouponResponse(c *domain.Coupon) couponResponse {
	return couponResponse{Code: c.Code, Kind: string(c.Kind), Discount: c.Discount.String()}
}

func toQuoteResponse(q *ports.Quote) quoteResponse {
	out := quoteResponse{
		ProductID:       q.Product.ID,
		ProductTitle:    q.Product.Title,
		Currency:        q.Currency,
		Subtotal:        money(q.Breakdown.Subtotal),
		Discount:        money(q.Breakdown.Discount),
		DiscountedPrice: money(q.Breakdown.DiscountedPrice),
		TaxRate:         q.Breakdown.TaxRate.String(),
		Tax:             money(q.Breakdown.Tax),
		Total:           money(q.Breakdown.Total),
	}
	if q.Coupon != nil {
		out.CouponCode = q.Coupon.Code
	}
	return out
}

func toPurchaseResponse(p *domain.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:              p.ID,
		ProductID:       p.ProductID,
		ProductTitle:    p.ProductTitle,
		PricePaid:       money(p.PricePaid),
		DiscountApplied: money(p.DiscountApplied),
		CouponCode:      p.CouponCode,
		ReferralCode:    p.ReferralCode,
		Currency:        p.Currency,
		PaymentMethod:   p.PaymentMethod,
		Status:          string(p.Status),
		PurchasedAt:     p.PurchasedAt.UTC(),
	}
}

func toAffiliateResponse(a *domain.Affiliate) affiliateResponse {
	return affiliateResponse{
		ID:                a.ID,
		ReferralCode:      a.ReferralCode,
		CommissionPercent: a.CommissionPercent.String(),
		TotalSales:        money(a.TotalSales),
		TotalCommissions:  money(a.TotalCommissions),
		Active:            a.Active,
		RegisteredAt:      a.RegisteredAt.UTC(),
	}
}

func toSaleResponse(s domain.AffiliateSale) affiliateSaleResponse {
	return affiliateSaleResponse{
		ID:           s.ID,
		PurchaseID:   s.PurchaseID,
		ProductID:    s.ProductID,
		ProductTitle: s.ProductTitle,
		SaleAmount:   money(s.SaleAmount),
		Commission:   money(s.Commission),
		Status:       string(s.Status),
		SoldAt:       s.SoldAt.UTC(),
	}
}

func toWithdrawalResponse(w *domain.Withdrawal) withdrawalResponse {
	return withdrawalResponse{
		ID:            w.ID,
		UserID:        w.UserID,
		Kind:          string(w.Kind),
		Amount:        money(w.Amount),
		Fee:           money(w.Fee),
		NetAmount:     money(w.NetAmount),
		Currency:      w.Currency,
		PaymentMethod: w.PaymentMethod,
		Status:        string(w.Status),
		Notes:         w.Notes,
		RequestedAt:   w.RequestedAt.UTC(),
		ProcessedAt:   w.ProcessedAt,
		PaidAt:        w.PaidAt,
	}
}

func toWithdrawalList(items []*domain.Withdrawal) listWithdrawalsResponse {
	out := make([]withdrawalResponse, len(items))
	for i, w := range items {
		out[i] = toWithdrawalResponse(w)
	}
	return listWithdrawalsResponse{Data: out}
}

// --- Request → Service input ---

func toBilling(b billingRequest) domain.Billing {
	return domain.Billing{
		Name:       b.Name,
		Email:      b.Email,
		TaxID:      b.TaxID,
		Address:    b.Address,
		City:       b.City,
		PostalCode: b.PostalCode,
		Country:    b.Country,
	}
}
