package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clikenova/storefront/internal/api/middleware"
	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
	"github.com/clikenova/storefront/internal/core/session"
)

var (
	ana = &domain.Identity{
		ID:           "u-ana",
		Name:         "Ana",
		Email:        "ana@example.com",
		Role:         domain.RoleStudent,
		Active:       true,
		RegisteredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	pedro = &domain.Identity{ID: "u-pedro", Name: "Pedro", Role: domain.RoleProducer, Active: true}
)

// newContext builds an echo context with the production validator. A nil
// sess leaves the context without a session.
func newContext(method, target, body string, sess ports.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set(middleware.ContextSession, sess)
		if id := sess.State().Identity; id != nil {
			c.Set(middleware.ContextUserID, id.ID)
			c.Set(middleware.ContextRole, id.Role)
		}
	}
	return c, rec
}

func signedIn(identity *domain.Identity) *session.Session {
	s := session.NewAnonymous("sid-" + identity.ID)
	s.Apply(s.Begin(), identity)
	return s
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

// httpStatus extracts the status of an echo.HTTPError, or 0.
func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}

// stubNotifications implements ports.NotificationService on top of the
// session inbox, without a record store.
type stubNotifications struct {
	added []ports.NotificationInput
	err   error
}

func (s *stubNotifications) Add(_ context.Context, sess ports.Session, in ports.NotificationInput) (*domain.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.added = append(s.added, in)
	n := domain.Notification{ID: "n-1", Kind: in.Kind, Title: in.Title, Body: in.Body}
	sess.Inbox().Prepend(n)
	return &n, nil
}

func (s *stubNotifications) Notify(context.Context, string, ports.NotificationInput) error {
	return s.err
}

func (s *stubNotifications) MarkRead(_ context.Context, sess ports.Session, id string) error {
	if !sess.Inbox().MarkRead(id) {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (s *stubNotifications) Clear(_ context.Context, sess ports.Session) error {
	sess.Inbox().Clear()
	return s.err
}

func (s *stubNotifications) Load(_ context.Context, sess ports.Session) ([]domain.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	return sess.Inbox().Items(), nil
}

func (s *stubNotifications) List(sess ports.Session) []domain.Notification {
	return sess.Inbox().Items()
}

func (s *stubNotifications) UnreadCount(_ context.Context, sess ports.Session) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return sess.Inbox().UnreadCount(), nil
}
