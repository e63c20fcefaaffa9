package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

// NotificationService keeps a session's notification list in step with the
// owner's stored records. Storage failures never corrupt the local list: the
// failed operation is logged and the list is left as it was.
type NotificationService struct {
	repo ports.NotificationRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewNotificationService(repo ports.NotificationRepository, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log, now: time.Now}
}

// Add prepends a notification to the session list. Anonymous sessions get a
// local, time-ordered ID; authenticated ones get the stored record.
func (s *NotificationService) Add(ctx context.Context, sess ports.Session, in ports.NotificationInput) (*domain.Notification, error) {
	if err := validateNotification(in); err != nil {
		return nil, err
	}

	n := domain.Notification{
		Kind:      in.Kind,
		Title:     in.Title,
		Body:      in.Body,
		ActionURL: in.ActionURL,
		SentAt:    s.now().UTC(),
	}

	gen := sess.Generation()
	owner := ownerOf(sess)
	if owner == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("local notification id: %w", err)
		}
		n.ID = id.String()
		sess.Inbox().Prepend(n)
		return &n, nil
	}

	n.OwnerID = owner
	stored, err := s.repo.Insert(ctx, &n)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", owner).Str("title", in.Title).Msg("failed to store notification")
		return nil, fmt.Errorf("add notification: %w", joinPersistence(err))
	}
	if sess.Generation() == gen {
		sess.Inbox().Prepend(*stored)
	}
	return stored, nil
}

// Notify stores a notification for ownerID without touching any session. The
// owner sees it on the next Load.
func (s *NotificationService) Notify(ctx context.Context, ownerID string, in ports.NotificationInput) error {
	if ownerID == "" {
		return domain.ErrUnauthenticated
	}
	if err := validateNotification(in); err != nil {
		return err
	}
	_, err := s.repo.Insert(ctx, &domain.Notification{
		OwnerID:   ownerID,
		Kind:      in.Kind,
		Title:     in.Title,
		Body:      in.Body,
		ActionURL: in.ActionURL,
		SentAt:    s.now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", ownerID).Str("title", in.Title).Msg("failed to store notification")
		return fmt.Errorf("notify: %w", joinPersistence(err))
	}
	return nil
}

// MarkRead flags id as read locally right away. For authenticated sessions
// the stored update is scoped to the owner; if it fails the local flag is
// restored.
func (s *NotificationService) MarkRead(ctx context.Context, sess ports.Session, id string) error {
	box := sess.Inbox()
	was, found := box.SetRead(id, true)

	owner := ownerOf(sess)
	if owner == "" {
		if !found {
			return domain.ErrNotificationNotFound
		}
		return nil
	}

	if err := s.repo.MarkRead(ctx, id, owner); err != nil {
		if found && !was {
			box.SetRead(id, false)
		}
		s.log.Warn().Err(err).Str("user_id", owner).Str("notification_id", id).Msg("failed to mark notification read")
		return fmt.Errorf("mark read: %w", joinPersistence(err))
	}
	return nil
}

// Clear empties the list, deleting the owner's stored records first.
func (s *NotificationService) Clear(ctx context.Context, sess ports.Session) error {
	if owner := ownerOf(sess); owner != "" {
		if err := s.repo.DeleteByOwner(ctx, owner); err != nil {
			s.log.Warn().Err(err).Str("user_id", owner).Msg("failed to clear notifications")
			return fmt.Errorf("clear notifications: %w", joinPersistence(err))
		}
	}
	sess.Inbox().Clear()
	return nil
}

// Load replaces the session list with the owner's most recent records,
// newest first. Anonymous sessions keep their local list.
func (s *NotificationService) Load(ctx context.Context, sess ports.Session) ([]domain.Notification, error) {
	owner := ownerOf(sess)
	if owner == "" {
		return sess.Inbox().Items(), nil
	}

	gen := sess.Generation()
	items, err := s.repo.ListRecent(ctx, owner, domain.NotificationLimit)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", owner).Msg("failed to load notifications")
		return nil, fmt.Errorf("load notifications: %w", joinPersistence(err))
	}
	if !sess.ReplaceInbox(gen, items) {
		s.log.Debug().Str("session_id", sess.ID()).Msg("discarded stale notification load")
	}
	return sess.Inbox().Items(), nil
}

// List returns the session list, newest first.
func (s *NotificationService) List(sess ports.Session) []domain.Notification {
	return sess.Inbox().Items()
}

// UnreadCount counts unread notifications in the session list. An
// authenticated session that has not loaded its list under the current
// identity is loaded first, so a fresh login or another replica's session
// reports the stored count.
func (s *NotificationService) UnreadCount(ctx context.Context, sess ports.Session) (int, error) {
	if ownerOf(sess) != "" && !sess.InboxSynced() {
		if _, err := s.Load(ctx, sess); err != nil {
			return 0, err
		}
	}
	return sess.Inbox().UnreadCount(), nil
}

func validateNotification(in ports.NotificationInput) error {
	if !in.Kind.Valid() {
		return domain.ErrInvalidNotificationKind
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("notification title is required: %w", domain.ErrInvalidInput)
	}
	return nil
}

func ownerOf(sess ports.Session) string {
	st := sess.State()
	if st.Status != domain.SessionAuthenticated || st.Identity == nil {
		return ""
	}
	return st.Identity.ID
}
