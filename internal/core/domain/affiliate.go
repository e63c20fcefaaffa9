package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Affiliate is the referral profile of an affiliate identity.
type Affiliate struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	ReferralCode      string          `json:"referral_code"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalCommissions  decimal.Decimal `json:"total_commissions"`
	Active            bool            `json:"active"`
	RegisteredAt      time.Time       `json:"registered_at"`
}

// SaleStatus is the payout state of an affiliate sale.
type SaleStatus string

const (
	SalePending  SaleStatus = "pending"
	SaleApproved SaleStatus = "approved"
	SalePaid     SaleStatus = "paid"
	SaleCanceled SaleStatus = "canceled"
)

// AffiliateSale is a purchase attributed to a referral code.
type AffiliateSale struct {
	ID                string          `json:"id"`
	AffiliateID       string          `json:"affiliate_id"`
	PurchaseID        string          `json:"purchase_id"`
	ProductID         string          `json:"product_id"`
	ProductTitle      string          `json:"product_title,omitempty"`
	SaleAmount        decimal.Decimal `json:"sale_amount"`
	Commission        decimal.Decimal `json:"commission"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	Status            SaleStatus      `json:"status"`
	SoldAt            time.Time       `json:"sold_at"`
}

// AffiliateStats summarises an affiliate's sales.
type AffiliateStats struct {
	TotalSales         int             `json:"total_sales"`
	PaidCommissions    decimal.Decimal `json:"paid_commissions"`
	PendingCommissions decimal.Decimal `json:"pending_commissions"`
}

// SummariseSales computes the affiliate dashboard figures. Pending includes
// sales that are approved but not yet paid out.
func SummariseSales(sales []AffiliateSale) AffiliateStats {
	st := AffiliateStats{
		TotalSales:         len(sales),
		PaidCommissions:    decimal.Zero,
		PendingCommissions: decimal.Zero,
	}
	for _, s := range sales {
		switch s.Status {
		case SalePaid:
			st.PaidCommissions = st.PaidCommissions.Add(s.Commission)
		case SalePending, SaleApproved:
			st.PendingCommissions = st.PendingCommissions.Add(s.Commission)
		}
	}
	return st
}
