package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/session"
)

func TestNotificationHandler_CreateAndList(t *testing.T) {
	svc := &stubNotifications{}
	h := NewNotificationHandler(svc)
	sess := session.NewAnonymous("anon")

	c, rec := newContext(http.MethodPost, "/v1/notifications", `{"kind":"success","title":"Saved","body":"Your cart was saved"}`, sess)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(svc.added) != 1 || svc.added[0].Kind != domain.NotificationSuccess {
		t.Fatalf("unexpected service input: %+v", svc.added)
	}

	c, rec = newContext(http.MethodGet, "/v1/notifications", "", sess)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp notificationListResponse
	decode(t, rec, &resp)
	if len(resp.Data) != 1 || resp.Data[0].Title != "Saved" || resp.Unread != 1 {
		t.Fatalf("unexpected list: %+v", resp)
	}
}

func TestNotificationHandler_List_EmptyIsArray(t *testing.T) {
	h := NewNotificationHandler(&stubNotifications{})

	c, rec := newContext(http.MethodGet, "/v1/notifications", "", signedIn(ana))
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "{\"data\":[],\"unread\":0}\n" {
		t.Fatalf("expected an empty data array, got %s", body)
	}
}

func TestNotificationHandler_Create_InvalidKind(t *testing.T) {
	h := NewNotificationHandler(&stubNotifications{})

	c, _ := newContext(http.MethodPost, "/v1/notifications", `{"kind":"shout","title":"Hi"}`, signedIn(ana))
	if code := httpStatus(h.Create(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestNotificationHandler_MarkReadAndCount(t *testing.T) {
	h := NewNotificationHandler(&stubNotifications{})
	sess := signedIn(ana)
	sess.Inbox().Prepend(domain.Notification{ID: "n-1", OwnerID: ana.ID, Title: "Order paid"})
	sess.Inbox().Prepend(domain.Notification{ID: "n-2", OwnerID: ana.ID, Title: "New lesson"})

	c, rec := newContext(http.MethodPost, "/v1/notifications/n-1/read", "", sess)
	c.SetParamNames("id")
	c.SetParamValues("n-1")
	if err := h.MarkRead(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodGet, "/v1/notifications/unread-count", "", sess)
	if err := h.UnreadCount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp unreadCountResponse
	decode(t, rec, &resp)
	if resp.Unread != 1 {
		t.Fatalf("expected 1 unread, got %d", resp.Unread)
	}
}

func TestNotificationHandler_MarkRead_Unknown(t *testing.T) {
	h := NewNotificationHandler(&stubNotifications{})

	c, _ := newContext(http.MethodPost, "/v1/notifications/missing/read", "", signedIn(ana))
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := h.MarkRead(c); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
}

func TestNotificationHandler_Clear(t *testing.T) {
	h := NewNotificationHandler(&stubNotifications{})
	sess := signedIn(ana)
	sess.Inbox().Prepend(domain.Notification{ID: "n-1", Title: "x"})

	c, rec := newContext(http.MethodDelete, "/v1/notifications", "", sess)
	if err := h.Clear(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || len(sess.Inbox().Items()) != 0 {
		t.Fatalf("expected an empty list after clear")
	}
}

func TestNotificationHandler_NoSession(t *testing.T) {
	h := NewNotificationHandler(&stubNotifications{})

	c, _ := newContext(http.MethodGet, "/v1/notifications", "", nil)
	if code := httpStatus(h.List(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
