package service

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

func newAffiliateFixture() (*AffiliateService, *stubAffiliateRepo, *stubNotificationRepo) {
	repo := newStubAffiliateRepo()
	notes := &stubNotificationRepo{}
	products := newStubProductRepo(&domain.Product{ID: "p-1", Title: "Go Course", Active: true})
	svc := NewAffiliateService(repo, products, NewNotificationService(notes, nopLog),
		AffiliateConfig{BaseURL: "https://shop.example/"}, nopLog)
	return svc, repo, notes
}

func TestAffiliateService_ProfileCreatedOnce(t *testing.T) {
	svc, repo, _ := newAffiliateFixture()
	ctx := context.Background()

	a, err := svc.Profile(ctx, "u-aff")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if len(a.ReferralCode) != 10 || strings.ToUpper(a.ReferralCode) != a.ReferralCode {
		t.Fatalf("unexpected referral code %q", a.ReferralCode)
	}
	if !a.CommissionPercent.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected default 20%% commission, got %s", a.CommissionPercent)
	}

	again, _ := svc.Profile(ctx, "u-aff")
	if again.ID != a.ID || len(repo.byUser) != 1 {
		t.Fatalf("profile must be created once")
	}
}

func TestAffiliateService_ReferralLink(t *testing.T) {
	svc, _, _ := newAffiliateFixture()
	ctx := context.Background()

	link, err := svc.ReferralLink(ctx, "u-aff", "p-1")
	if err != nil {
		t.Fatalf("ReferralLink failed: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("invalid link %q: %v", link, err)
	}
	a, _ := svc.Profile(ctx, "u-aff")
	if u.Host != "shop.example" || u.Path != "/product/p-1" || u.Query().Get("ref") != a.ReferralCode {
		t.Fatalf("unexpected link %s", link)
	}

	if _, err := svc.ReferralLink(ctx, "u-aff", "missing"); err == nil {
		t.Fatalf("expected error for unknown product")
	}
}

func TestAffiliateService_RecordReferralSale(t *testing.T) {
	svc, repo, notes := newAffiliateFixture()
	ctx := context.Background()
	a, _ := svc.Profile(ctx, "u-aff")

	ev := ports.CommissionEvent{
		ReferralCode: a.ReferralCode,
		PurchaseID:   "pur-1",
		ProductID:    "p-1",
		ProductTitle: "Go Course",
		BuyerID:      "u-buyer",
		Amount:       decimal.RequireFromString("134.10"),
		At:           time.Now(),
	}
	if err := svc.RecordReferralSale(ctx, ev); err != nil {
		t.Fatalf("RecordReferralSale failed: %v", err)
	}
	if len(repo.sales) != 1 {
		t.Fatalf("expected one sale, got %d", len(repo.sales))
	}
	if got := repo.sales[0].Commission.StringFixed(2); got != "26.82" {
		t.Fatalf("expected commission 26.82, got %s", got)
	}
	if notes.count("u-aff") != 1 {
		t.Fatalf("expected affiliate notification")
	}

	// Same purchase again is ignored.
	if err := svc.RecordReferralSale(ctx, ev); err != nil {
		t.Fatalf("duplicate should be ignored, got %v", err)
	}
	if len(repo.sales) != 1 || notes.count("u-aff") != 1 {
		t.Fatalf("duplicate sale must not be recorded twice")
	}

	st, err := svc.Stats(ctx, "u-aff")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.TotalSales != 1 || st.PendingCommissions.StringFixed(2) != "26.82" {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestAffiliateService_RecordReferralSale_Ignored(t *testing.T) {
	svc, repo, _ := newAffiliateFixture()
	ctx := context.Background()
	a, _ := svc.Profile(ctx, "u-aff")

	cases := []ports.CommissionEvent{
		{ReferralCode: "UNKNOWN", PurchaseID: "x1", BuyerID: "u-b", Amount: decimal.NewFromInt(10)},
		{ReferralCode: a.ReferralCode, PurchaseID: "x2", BuyerID: "u-aff", Amount: decimal.NewFromInt(10)},
	}
	for _, ev := range cases {
		if err := svc.RecordReferralSale(ctx, ev); err != nil {
			t.Fatalf("expected event to be ignored, got %v", err)
		}
	}

	repo.byUser["u-aff"].Active = false
	if err := svc.RecordReferralSale(ctx, ports.CommissionEvent{ReferralCode: a.ReferralCode, PurchaseID: "x3", BuyerID: "u-b", Amount: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("inactive affiliate should be ignored, got %v", err)
	}
	if len(repo.sales) != 0 {
		t.Fatalf("expected no sales, got %d", len(repo.sales))
	}
}
