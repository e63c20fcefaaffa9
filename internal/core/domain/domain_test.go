package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestWithdrawalStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to WithdrawalStatus
		want     bool
	}{
		{WithdrawalPending, WithdrawalApproved, true},
		{WithdrawalPending, WithdrawalRejected, true},
		{WithdrawalPending, WithdrawalPaid, false},
		{WithdrawalApproved, WithdrawalProcessing, true},
		{WithdrawalApproved, WithdrawalPending, false},
		{WithdrawalProcessing, WithdrawalPaid, true},
		{WithdrawalProcessing, WithdrawalRejected, true},
		{WithdrawalPaid, WithdrawalRejected, false},
		{WithdrawalRejected, WithdrawalApproved, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestSummariseSales(t *testing.T) {
	sales := []AffiliateSale{
		{Commission: decimal.RequireFromString("10.50"), Status: SalePaid},
		{Commission: decimal.RequireFromString("4.25"), Status: SalePending},
		{Commission: decimal.RequireFromString("1.25"), Status: SaleApproved},
		{Commission: decimal.RequireFromString("99"), Status: SaleCanceled},
	}

	st := SummariseSales(sales)
	if st.TotalSales != 4 {
		t.Fatalf("expected 4 sales, got %d", st.TotalSales)
	}
	if st.PaidCommissions.StringFixed(2) != "10.50" {
		t.Fatalf("unexpected paid %s", st.PaidCommissions)
	}
	if st.PendingCommissions.StringFixed(2) != "5.50" {
		t.Fatalf("unexpected pending %s", st.PendingCommissions)
	}
}

func TestCouponRecord_Usable(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		rec  CouponRecord
		want bool
	}{
		{"active without expiry", CouponRecord{Active: true}, true},
		{"active not expired", CouponRecord{Active: true, ExpiresAt: &future}, true},
		{"expired", CouponRecord{Active: true, ExpiresAt: &past}, false},
		{"inactive", CouponRecord{Active: false}, false},
	}
	for _, tc := range cases {
		if got := tc.rec.Usable(now); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestDashboardPath(t *testing.T) {
	if DashboardPath(RoleProducer) != "/producer/dashboard" {
		t.Fatalf("unexpected producer dashboard")
	}
	if DashboardPath("ghost") != PathHome {
		t.Fatalf("unknown role must land on home")
	}
	if (SessionState{Status: SessionLoading, Identity: &Identity{Role: RoleAdmin}}).Role() != "" {
		t.Fatalf("role is only reported for authenticated sessions")
	}
}
