package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

const (
	defaultTTL          = 24 * time.Hour
	defaultAnonymousTTL = 30 * time.Minute
	defaultAnonymousMax = 10000
	sweepInterval       = time.Minute
)

// Registry owns every live session of this process. It mirrors the session
// pointers kept in the SessionStore and follows credential changes published
// by the AuthEventSource for as long as it is started.
type Registry struct {
	store      ports.SessionStore
	identities ports.IdentityRepository
	events     ports.AuthEventSource
	ttl        time.Duration
	log        zerolog.Logger
	now        func() time.Time

	anonTTL time.Duration
	anonMax int

	mu       sync.Mutex
	sessions map[string]*Session
	byUser   map[string]map[string]struct{}
	anon     map[string]*Session

	sub    ports.AuthSubscription
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry returns a Registry. Sessions idle for longer than ttl are
// evicted from memory; the store applies the same ttl.
func NewRegistry(
	store ports.SessionStore,
	identities ports.IdentityRepository,
	events ports.AuthEventSource,
	ttl time.Duration,
	log zerolog.Logger,
) *Registry {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Registry{
		store:      store,
		identities: identities,
		events:     events,
		ttl:        ttl,
		anonTTL:    defaultAnonymousTTL,
		anonMax:    defaultAnonymousMax,
		log:        log,
		now:        time.Now,
		sessions:   make(map[string]*Session),
		byUser:     make(map[string]map[string]struct{}),
		anon:       make(map[string]*Session),
	}
}

// SetAnonymousLimits bounds the anonymous sessions kept in memory: each is
// dropped after ttl without a request, and at most max are held at once.
// Non-positive values keep the defaults. Call it before Start.
func (r *Registry) SetAnonymousLimits(ttl time.Duration, max int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ttl > 0 {
		r.anonTTL = ttl
	}
	if max > 0 {
		r.anonMax = max
	}
}

// Start subscribes to credential changes and starts the idle sweeper. Both
// stop on Close or when ctx is cancelled.
func (r *Registry) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	sub, err := r.events.Subscribe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe auth events: %w", err)
	}

	r.mu.Lock()
	r.sub = sub
	r.cancel = cancel
	r.mu.Unlock()

	r.wg.Add(2)
	go r.follow(ctx, sub.Events())
	go r.sweep(ctx)
	return nil
}

// Close tears down the subscription and waits for the background loops.
func (r *Registry) Close() error {
	r.mu.Lock()
	sub, cancel := r.sub, r.cancel
	r.sub, r.cancel = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	err := sub.Close()
	r.wg.Wait()
	return err
}

func (r *Registry) follow(ctx context.Context, events <-chan ports.AuthEvent) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case ports.AuthSignedOut, ports.AuthUserDeleted:
				r.revokeUser(ctx, ev.UserID)
			}
		}
	}
}

func (r *Registry) sweep(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

func (r *Registry) evictIdle() {
	now := r.now()
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			r.forgetLocked(id, s.userID())
		}
	}
	anonCutoff := now.Add(-r.anonTTL)
	for id, s := range r.anon {
		if s.idleSince().Before(anonCutoff) {
			delete(r.anon, id)
		}
	}
}

// Open starts an authenticated session for identity.
func (r *Registry) Open(ctx context.Context, identity *domain.Identity) (ports.Session, error) {
	s := newSession(uuid.NewString(), r.now())
	s.Apply(s.Begin(), identity)

	if err := r.store.Save(ctx, s.ID(), identity.ID, r.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	r.mu.Lock()
	r.trackLocked(s, identity.ID)
	r.mu.Unlock()

	r.log.Debug().Str("session_id", s.ID()).Str("user_id", identity.ID).Msg("session opened")
	return s, nil
}

// Anonymous returns the kept anonymous session with the given id. Otherwise
// it returns a fresh session that the registry does not hold until Keep is
// called. The fresh session reuses id when it is a UUID that no
// authenticated session owns, so the client header stays stable.
func (r *Registry) Anonymous(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.anon[id]; ok {
		s.touch(r.now())
		return s
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	} else if _, taken := r.sessions[id]; taken {
		id = uuid.NewString()
	}
	s := NewAnonymous(id)
	s.touch(r.now())
	return s
}

// Keep holds an anonymous session in memory once its notification list is
// not empty. When the cap is reached the least recently used anonymous
// session is dropped.
func (r *Registry) Keep(s *Session) {
	if s.State().Status != domain.SessionAnonymous || s.Inbox().Len() == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.anon[s.ID()]; ok {
		return
	}
	if len(r.anon) >= r.anonMax {
		r.evictOldestAnonymousLocked()
	}
	s.touch(r.now())
	r.anon[s.ID()] = s
}

func (r *Registry) evictOldestAnonymousLocked() {
	var (
		oldestID string
		oldestAt time.Time
	)
	for id, s := range r.anon {
		if at := s.idleSince(); oldestID == "" || at.Before(oldestAt) {
			oldestID, oldestAt = id, at
		}
	}
	delete(r.anon, oldestID)
}

// Resolve returns the authenticated session id that a token issued to userID
// refers to. A session that was ended or revoked in the meantime yields
// domain.ErrSessionRevoked.
func (r *Registry) Resolve(ctx context.Context, id, userID string) (*Session, error) {
	r.mu.Lock()
	s, cached := r.sessions[id]
	r.mu.Unlock()

	if cached {
		st := s.State()
		if st.Status == domain.SessionAuthenticated && st.Identity.ID == userID {
			s.touch(r.now())
			return s, nil
		}
		if st.Status == domain.SessionLoading {
			if st, err := s.Wait(ctx); err != nil {
				return nil, err
			} else if st.Status == domain.SessionAuthenticated && st.Identity.ID == userID {
				return s, nil
			}
		}
	} else {
		s = newSession(id, r.now())
	}

	gen := s.Begin()

	owner, err := r.store.Lookup(ctx, id)
	if err != nil {
		s.Apply(gen, nil)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionRevoked
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if owner != userID {
		s.Apply(gen, nil)
		return nil, domain.ErrSessionRevoked
	}

	identity, err := r.identities.FindByID(ctx, userID)
	if err != nil {
		s.Apply(gen, nil)
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrSessionRevoked
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if !identity.Active {
		s.Apply(gen, nil)
		return nil, domain.ErrAccountDisabled
	}

	if !s.Apply(gen, identity) {
		// A newer resolution or a sign-out won the race.
		st, err := s.Wait(ctx)
		if err != nil {
			return nil, err
		}
		if st.Status != domain.SessionAuthenticated || st.Identity.ID != userID {
			return nil, domain.ErrSessionRevoked
		}
		return s, nil
	}

	r.mu.Lock()
	r.trackLocked(s, userID)
	r.mu.Unlock()
	return s, nil
}

// End signs a single session out.
func (r *Registry) End(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		r.forgetLocked(id, s.userID())
	}
	r.mu.Unlock()

	if ok {
		s.SignedOut()
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *Registry) revokeUser(ctx context.Context, userID string) {
	r.mu.Lock()
	ids := r.byUser[userID]
	revoked := make([]*Session, 0, len(ids))
	for id := range ids {
		if s, ok := r.sessions[id]; ok {
			revoked = append(revoked, s)
		}
		r.forgetLocked(id, userID)
	}
	r.mu.Unlock()

	for _, s := range revoked {
		s.SignedOut()
	}
	if err := r.store.DeleteByUser(ctx, userID); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("failed to delete stored sessions")
	}
	r.log.Info().Str("user_id", userID).Int("sessions", len(revoked)).Msg("sessions revoked")
}

// Len reports how many sessions are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions) + len(r.anon)
}

func (r *Registry) trackLocked(s *Session, userID string) {
	r.sessions[s.ID()] = s
	ids, ok := r.byUser[userID]
	if !ok {
		ids = make(map[string]struct{})
		r.byUser[userID] = ids
	}
	ids[s.ID()] = struct{}{}
}

func (r *Registry) forgetLocked(id, userID string) {
	delete(r.sessions, id)
	if userID == "" {
		return
	}
	if ids, ok := r.byUser[userID]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byUser, userID)
		}
	}
}
