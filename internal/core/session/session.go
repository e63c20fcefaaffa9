// Package session holds the per-client session state machine and the registry
// that owns every live session.
//
// A session starts in the loading state and leaves it exactly once per
// resolution, either to anonymous or to authenticated. Each resolution is
// tagged with a generation; a result that arrives after a newer resolution
// began is discarded, so a slow identity lookup can never overwrite a later
// sign-out.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/inbox"
)

// Session is the state container for one client.
type Session struct {
	id string

	mu       sync.Mutex
	status   domain.SessionStatus
	identity *domain.Identity
	gen      uint64
	box      *inbox.Inbox
	synced   bool
	syncGen  uint64
	touched  time.Time
	resolved chan struct{}
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		id:       id,
		status:   domain.SessionLoading,
		box:      inbox.New(),
		touched:  now,
		resolved: make(chan struct{}),
	}
}

// NewAnonymous returns a resolved anonymous session that is not tracked by
// any registry.
func NewAnonymous(id string) *Session {
	s := newSession(id, time.Now())
	s.Apply(s.Begin(), nil)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns a snapshot of the session.
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := domain.SessionState{Status: s.status}
	if s.status == domain.SessionAuthenticated && s.identity != nil {
		cp := *s.identity
		st.Identity = &cp
	}
	return st
}

// Generation returns the current resolution generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Begin starts a new resolution: the session moves to loading and any
// in-flight resolution becomes stale. The returned token must be passed to
// Apply.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.status != domain.SessionLoading {
		s.status = domain.SessionLoading
		s.resolved = make(chan struct{})
	}
	return s.gen
}

// Apply finishes the resolution started with gen. A nil identity resolves to
// anonymous. It reports false, leaving the session untouched, when gen is
// stale.
func (s *Session) Apply(gen uint64, identity *domain.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.status != domain.SessionLoading {
		return false
	}

	prev := s.identity
	if identity == nil {
		s.status = domain.SessionAnonymous
		s.identity = nil
	} else {
		cp := *identity
		s.status = domain.SessionAuthenticated
		s.identity = &cp
	}
	if prev == nil || identity == nil || prev.ID != identity.ID {
		s.box = inbox.New()
	}
	close(s.resolved)
	return true
}

// SignedOut drops the identity. In-flight resolutions become stale and the
// notification list of the previous owner is discarded.
func (s *Session) SignedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	wasAnonymous := s.status == domain.SessionAnonymous && s.identity == nil
	if s.status == domain.SessionLoading {
		close(s.resolved)
	}
	s.status = domain.SessionAnonymous
	s.identity = nil
	if !wasAnonymous {
		s.box = inbox.New()
	}
}

// Inbox returns the notification list of the current owner.
func (s *Session) Inbox() *inbox.Inbox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.box
}

// ReplaceInbox installs items unless the identity changed since gen was read.
func (s *Session) ReplaceInbox(gen uint64, items []domain.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return false
	}
	s.box.Replace(items)
	s.synced, s.syncGen = true, gen
	return true
}

// InboxSynced reports whether the list was loaded from the record store
// since the identity last changed.
func (s *Session) InboxSynced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced && s.syncGen == s.gen
}

// Wait blocks until the session leaves the loading state.
func (s *Session) Wait(ctx context.Context) (domain.SessionState, error) {
	s.mu.Lock()
	ch := s.resolved
	s.mu.Unlock()

	select {
	case <-ch:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) userID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.ID
}
