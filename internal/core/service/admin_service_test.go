package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

func TestProducerService_CreateAndStats(t *testing.T) {
	products := newStubProductRepo()
	svc := NewProducerService(products, "", nopLog)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ports.CreateProductInput{
		ProducerID: "u-prod", Title: "  Ebook ", Kind: domain.ProductEbook, Price: decimal.RequireFromString("19.999"),
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if p.Title != "Ebook" || p.Price.StringFixed(2) != "20.00" || p.Currency != "EUR" || !p.Active {
		t.Fatalf("unexpected product %+v", p)
	}

	products.byID[p.ID].SalesCount = 3
	st, err := svc.Stats(ctx, "u-prod")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Products != 1 || st.TotalSales != 3 || st.Revenue.StringFixed(2) != "60.00" {
		t.Fatalf("unexpected stats %+v", st)
	}

	if err := svc.SetProductActive(ctx, "u-other", p.ID, false); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("foreign producer must not toggle product, got %v", err)
	}
	if err := svc.SetProductActive(ctx, "u-prod", p.ID, false); err != nil {
		t.Fatalf("SetProductActive failed: %v", err)
	}
	items, _ := svc.Products(ctx, "u-prod")
	if len(items) != 1 || items[0].Active {
		t.Fatalf("inactive product must still be listed for its producer")
	}
}

func TestProducerService_CreateValidation(t *testing.T) {
	svc := NewProducerService(newStubProductRepo(), "EUR", nopLog)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, ports.CreateProductInput{Kind: domain.ProductEbook}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing title, got %v", err)
	}
	if _, err := svc.CreateProduct(ctx, ports.CreateProductInput{Title: "x", Kind: "vinyl"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for kind, got %v", err)
	}
	if _, err := svc.CreateProduct(ctx, ports.CreateProductInput{Title: "x", Kind: domain.ProductEbook, Price: decimal.NewFromInt(-1)}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAdminService_Overview(t *testing.T) {
	ids := newStubIdentityRepo()
	ids.byID["a"] = &domain.Identity{ID: "a", Role: domain.RoleStudent}
	ids.byID["b"] = &domain.Identity{ID: "b", Role: domain.RoleStudent}
	ids.byID["c"] = &domain.Identity{ID: "c", Role: domain.RoleProducer}
	withdrawals := newStubWithdrawalRepo()
	withdrawals.byID["w1"] = &domain.Withdrawal{ID: "w1", Status: domain.WithdrawalPending}
	withdrawals.byID["w2"] = &domain.Withdrawal{ID: "w2", Status: domain.WithdrawalPaid}

	svc := NewAdminService(ids, newStubProductRepo(&domain.Product{ID: "p"}), newStubPurchaseRepo(), withdrawals, newStubCredentials(), nopLog)

	ov, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if ov.TotalIdentities != 3 || ov.IdentitiesByRole[domain.RoleStudent] != 2 {
		t.Fatalf("unexpected identity counts %+v", ov)
	}
	if ov.Products != 1 || ov.Purchases != 0 || ov.PendingWithdrawals != 1 {
		t.Fatalf("unexpected counters %+v", ov)
	}
}

func TestAdminService_Identities(t *testing.T) {
	ids := newStubIdentityRepo()
	ids.byID["a"] = &domain.Identity{ID: "a", Role: domain.RoleStudent}
	ids.byID["b"] = &domain.Identity{ID: "b", Role: domain.RoleAffiliate}
	svc := NewAdminService(ids, newStubProductRepo(), newStubPurchaseRepo(), newStubWithdrawalRepo(), newStubCredentials(), nopLog)

	list, err := svc.Identities(context.Background(), domain.RoleAffiliate, 0)
	if err != nil {
		t.Fatalf("Identities failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "b" {
		t.Fatalf("unexpected list %+v", list)
	}
	if _, err := svc.Identities(context.Background(), "wizard", 10); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAdminService_DeactivateSignsOut(t *testing.T) {
	ids := newStubIdentityRepo()
	ids.byID["a"] = &domain.Identity{ID: "a", Role: domain.RoleStudent, Active: true}
	creds := newStubCredentials()
	svc := NewAdminService(ids, newStubProductRepo(), newStubPurchaseRepo(), newStubWithdrawalRepo(), creds, nopLog)

	if err := svc.SetIdentityActive(context.Background(), "a", false); err != nil {
		t.Fatalf("SetIdentityActive failed: %v", err)
	}
	if ids.byID["a"].Active {
		t.Fatalf("identity should be inactive")
	}
	if len(creds.signedOut) != 1 || creds.signedOut[0] != "a" {
		t.Fatalf("expected sign-out, got %v", creds.signedOut)
	}

	if err := svc.SetIdentityActive(context.Background(), "missing", true); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}
