package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

var bob = &domain.Identity{ID: "u-bob", Name: "Bob", Role: domain.RoleStudent, Active: true}

func newNotificationSvc(repo *stubNotificationRepo) *NotificationService {
	svc := NewNotificationService(repo, nopLog)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc
}

func info(title string) ports.NotificationInput {
	return ports.NotificationInput{Kind: domain.NotificationInfo, Title: title, Body: "body"}
}

func TestNotificationService_Add_AnonymousIsLocal(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := newNotificationSvc(repo)
	sess := anonymousSession()

	n, err := svc.Add(context.Background(), sess, info("hello"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if n.ID == "" || n.OwnerID != "" {
		t.Fatalf("expected local id and empty owner, got %+v", n)
	}
	if len(repo.items) != 0 {
		t.Fatalf("anonymous notifications must not be stored")
	}
	if n, err := svc.UnreadCount(context.Background(), sess); err != nil || n != 1 {
		t.Fatalf("expected 1 unread, got %d (%v)", n, err)
	}
}

func TestNotificationService_Add_AuthenticatedIsStored(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := newNotificationSvc(repo)
	sess := authenticated(bob)

	n, err := svc.Add(context.Background(), sess, info("welcome"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if n.ID != "srv-001" || n.OwnerID != bob.ID {
		t.Fatalf("expected stored record, got %+v", n)
	}
	items := svc.List(sess)
	if len(items) != 1 || items[0].ID != "srv-001" {
		t.Fatalf("expected stored record prepended, got %+v", items)
	}
}

func TestNotificationService_Add_FailureLeavesStateUnchanged(t *testing.T) {
	repo := &stubNotificationRepo{insertErr: errBoom}
	svc := newNotificationSvc(repo)
	sess := authenticated(bob)

	_, err := svc.Add(context.Background(), sess, info("lost"))
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(svc.List(sess)) != 0 {
		t.Fatalf("failed add must not change the list")
	}
}

func TestNotificationService_Add_Validation(t *testing.T) {
	svc := newNotificationSvc(&stubNotificationRepo{})
	sess := anonymousSession()

	if _, err := svc.Add(context.Background(), sess, ports.NotificationInput{Kind: "loud", Title: "x"}); !errors.Is(err, domain.ErrInvalidNotificationKind) {
		t.Fatalf("expected ErrInvalidNotificationKind, got %v", err)
	}
	if _, err := svc.Add(context.Background(), sess, ports.NotificationInput{Kind: domain.NotificationError, Title: " "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNotificationService_MarkRead_ScopedToOwner(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := newNotificationSvc(repo)
	ctx := context.Background()
	sess := authenticated(bob)

	n, _ := svc.Add(ctx, sess, info("one"))
	if err := svc.MarkRead(ctx, sess, n.ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if !repo.items[0].Read {
		t.Fatalf("stored record should be read")
	}
	if n, _ := svc.UnreadCount(ctx, sess); n != 0 {
		t.Fatalf("expected no unread")
	}

	// Another account cannot touch bob's record.
	mallory := authenticated(&domain.Identity{ID: "u-mallory", Role: domain.RoleStudent, Active: true})
	repo.items[0].Read = false
	if err := svc.MarkRead(ctx, mallory, n.ID); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
	if repo.items[0].Read {
		t.Fatalf("cross-account mark-read must not apply")
	}
}

func TestNotificationService_MarkRead_FailureRestoresFlag(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := newNotificationSvc(repo)
	ctx := context.Background()
	sess := authenticated(bob)

	n, _ := svc.Add(ctx, sess, info("one"))
	repo.markErr = errBoom

	if err := svc.MarkRead(ctx, sess, n.ID); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if n, _ := svc.UnreadCount(ctx, sess); n != 1 {
		t.Fatalf("local flag must be restored after a failed update")
	}
}

func TestNotificationService_MarkRead_AnonymousUnknownID(t *testing.T) {
	svc := newNotificationSvc(&stubNotificationRepo{})
	if err := svc.MarkRead(context.Background(), anonymousSession(), "nope"); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
}

func TestNotificationService_Clear(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := newNotificationSvc(repo)
	ctx := context.Background()
	sess := authenticated(bob)
	other := authenticated(&domain.Identity{ID: "u-other", Role: domain.RoleStudent, Active: true})

	_, _ = svc.Add(ctx, sess, info("a"))
	_, _ = svc.Add(ctx, other, info("b"))

	repo.deleteErr = errBoom
	if err := svc.Clear(ctx, sess); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(svc.List(sess)) != 1 {
		t.Fatalf("failed clear must not change the list")
	}

	repo.deleteErr = nil
	if err := svc.Clear(ctx, sess); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(svc.List(sess)) != 0 || repo.count(bob.ID) != 0 {
		t.Fatalf("expected bob's notifications gone")
	}
	if repo.count("u-other") != 1 {
		t.Fatalf("clear must be scoped to the owner")
	}
}

func TestNotificationService_Load_CapsAndOrders(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := newNotificationSvc(repo)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		if err := svc.Notify(ctx, bob.ID, info(fmt.Sprintf("n%d", i))); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
	}

	sess := authenticated(bob)
	items, err := svc.Load(ctx, sess)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(items) != domain.NotificationLimit {
		t.Fatalf("expected %d items, got %d", domain.NotificationLimit, len(items))
	}
	if items[0].Title != "n59" {
		t.Fatalf("expected newest first, got %s", items[0].Title)
	}
	for i := 1; i < len(items); i++ {
		if items[i].SentAt.After(items[i-1].SentAt) {
			t.Fatalf("items not ordered newest first at %d", i)
		}
	}
	if n, _ := svc.UnreadCount(ctx, sess); n != domain.NotificationLimit {
		t.Fatalf("unread count must follow the loaded list")
	}
}

func TestNotificationService_Notify_RequiresOwner(t *testing.T) {
	svc := newNotificationSvc(&stubNotificationRepo{})
	if err := svc.Notify(context.Background(), "", info("x")); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestNotificationService_UnreadCount_LoadsStoredListOnce(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := newNotificationSvc(repo)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		if err := svc.Notify(ctx, bob.ID, info(title)); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
	}

	sess := authenticated(bob)
	n, err := svc.UnreadCount(ctx, sess)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected the 3 stored notifications to count, got %d", n)
	}

	// Once synced, the local list answers without touching the store.
	repo.items = nil
	if n, _ := svc.UnreadCount(ctx, sess); n != 3 {
		t.Fatalf("expected the synced list to be reused, got %d", n)
	}

	// A new identity on the same session reloads.
	sess.SignedOut()
	sess.Apply(sess.Begin(), bob)
	if n, _ := svc.UnreadCount(ctx, sess); n != 0 {
		t.Fatalf("expected a reload after the identity changed, got %d", n)
	}
}

func TestNotificationService_UnreadCount_LoadFailure(t *testing.T) {
	svc := newNotificationSvc(&stubNotificationRepo{listErr: errBoom})

	if _, err := svc.UnreadCount(context.Background(), authenticated(bob)); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
