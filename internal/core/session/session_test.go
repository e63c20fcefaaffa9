package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemStore() *memStore { return &memStore{sessions: make(map[string]string)} }

func (m *memStore) Save(_ context.Context, sid, uid string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sid] = uid
	return nil
}

func (m *memStore) Lookup(_ context.Context, sid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, ok := m.sessions[sid]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return uid, nil
}

func (m *memStore) Delete(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sid)
	return nil
}

func (m *memStore) DeleteByUser(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sid, owner := range m.sessions {
		if owner == uid {
			delete(m.sessions, sid)
		}
	}
	return nil
}

type memIdentities struct {
	byID map[string]*domain.Identity
}

func (m *memIdentities) Create(context.Context, *domain.Identity) error { return nil }

func (m *memIdentities) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	if i, ok := m.byID[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, domain.ErrIdentityNotFound
}

func (m *memIdentities) SetActive(context.Context, string, bool) error { return nil }

func (m *memIdentities) List(context.Context, domain.Role, int) ([]*domain.Identity, error) {
	return nil, nil
}

func (m *memIdentities) CountByRole(context.Context) (map[domain.Role]int64, error) {
	return nil, nil
}

type chanSource struct {
	ch     chan ports.AuthEvent
	closed chan struct{}
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan ports.AuthEvent), closed: make(chan struct{})}
}

func (c *chanSource) Subscribe(context.Context) (ports.AuthSubscription, error) { return c, nil }
func (c *chanSource) Events() <-chan ports.AuthEvent                            { return c.ch }

func (c *chanSource) Close() error {
	close(c.closed)
	return nil
}

var alice = &domain.Identity{ID: "u-alice", Name: "Alice", Role: domain.RoleStudent, Active: true}

func newTestRegistry(t *testing.T) (*Registry, *memStore, *chanSource) {
	t.Helper()
	store := newMemStore()
	ids := &memIdentities{byID: map[string]*domain.Identity{alice.ID: alice}}
	src := newChanSource()
	return NewRegistry(store, ids, src, time.Hour, zerolog.Nop()), store, src
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func TestSession_StartsLoading(t *testing.T) {
	s := newSession("s1", time.Now())
	assert.Equal(t, domain.SessionLoading, s.State().Status)
	assert.Nil(t, s.State().Identity)
}

func TestSession_StaleResultIsDiscarded(t *testing.T) {
	s := newSession("s1", time.Now())

	first := s.Begin()
	second := s.Begin()

	assert.False(t, s.Apply(first, alice), "stale generation must not apply")
	assert.Equal(t, domain.SessionLoading, s.State().Status)

	assert.True(t, s.Apply(second, nil))
	assert.Equal(t, domain.SessionAnonymous, s.State().Status)
}

func TestSession_SignOutBeatsInFlightLookup(t *testing.T) {
	s := newSession("s1", time.Now())
	gen := s.Begin()

	s.SignedOut()

	assert.False(t, s.Apply(gen, alice))
	assert.Equal(t, domain.SessionAnonymous, s.State().Status)
}

func TestSession_StateIsASnapshot(t *testing.T) {
	s := newSession("s1", time.Now())
	s.Apply(s.Begin(), alice)

	st := s.State()
	st.Identity.Role = domain.RoleAdmin

	assert.Equal(t, domain.RoleStudent, s.State().Role())
}

func TestSession_InboxResetsWhenOwnerChanges(t *testing.T) {
	s := newSession("s1", time.Now())
	s.Apply(s.Begin(), alice)
	s.Inbox().Prepend(domain.Notification{ID: "n1"})

	s.SignedOut()

	assert.Empty(t, s.Inbox().Items())
}

func TestSession_ReplaceInboxChecksGeneration(t *testing.T) {
	s := newSession("s1", time.Now())
	s.Apply(s.Begin(), alice)
	gen := s.Generation()

	s.SignedOut()

	assert.False(t, s.ReplaceInbox(gen, []domain.Notification{{ID: "n1"}}))
	assert.Empty(t, s.Inbox().Items())
}

func TestSession_WaitReturnsResolvedState(t *testing.T) {
	s := newSession("s1", time.Now())
	gen := s.Begin()

	go s.Apply(gen, alice)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	st, err := s.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionAuthenticated, st.Status)
}

func TestSession_WaitHonoursContext(t *testing.T) {
	s := newSession("s1", time.Now())
	s.Begin()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestRegistry_OpenAndResolve(t *testing.T) {
	reg, store, _ := newTestRegistry(t)
	ctx := context.Background()

	opened, err := reg.Open(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionAuthenticated, opened.State().Status)
	assert.Contains(t, store.sessions, opened.ID())

	got, err := reg.Resolve(ctx, opened.ID(), alice.ID)
	require.NoError(t, err)
	assert.Same(t, opened, ports.Session(got))
}

func TestRegistry_ResolveFromStoreAfterRestart(t *testing.T) {
	reg, store, _ := newTestRegistry(t)
	store.sessions["s-old"] = alice.ID

	s, err := reg.Resolve(context.Background(), "s-old", alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, s.State().Identity.ID)
}

func TestRegistry_ResolveRejectsForeignOwner(t *testing.T) {
	reg, store, _ := newTestRegistry(t)
	store.sessions["s-1"] = "someone-else"

	_, err := reg.Resolve(context.Background(), "s-1", alice.ID)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestRegistry_ResolveInactiveIdentity(t *testing.T) {
	reg, store, _ := newTestRegistry(t)
	reg.identities = &memIdentities{byID: map[string]*domain.Identity{
		"u-off": {ID: "u-off", Role: domain.RoleStudent, Active: false},
	}}
	store.sessions["s-1"] = "u-off"

	_, err := reg.Resolve(context.Background(), "s-1", "u-off")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestRegistry_EndRevokesSession(t *testing.T) {
	reg, store, _ := newTestRegistry(t)
	ctx := context.Background()

	s, err := reg.Open(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, reg.End(ctx, s.ID()))

	assert.Equal(t, domain.SessionAnonymous, s.State().Status)
	assert.NotContains(t, store.sessions, s.ID())

	_, err = reg.Resolve(ctx, s.ID(), alice.ID)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestRegistry_SignedOutEventRevokesAllUserSessions(t *testing.T) {
	reg, store, src := newTestRegistry(t)
	ctx := context.Background()
	require.NoError(t, reg.Start(ctx))

	a, _ := reg.Open(ctx, alice)
	b, _ := reg.Open(ctx, alice)

	src.ch <- ports.AuthEvent{Kind: ports.AuthSignedOut, UserID: alice.ID, At: time.Now()}

	require.Eventually(t, func() bool {
		return a.State().Status == domain.SessionAnonymous && b.State().Status == domain.SessionAnonymous
	}, time.Second, 5*time.Millisecond)

	store.mu.Lock()
	assert.Empty(t, store.sessions)
	store.mu.Unlock()

	require.NoError(t, reg.Close())
	<-src.closed
}

func TestRegistry_CloseIsIdempotent(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	require.NoError(t, reg.Start(context.Background()))
	require.NoError(t, reg.Close())
	require.NoError(t, reg.Close())
}

func keptAnonymous(reg *Registry, id string) *Session {
	s := reg.Anonymous(id)
	s.Inbox().Prepend(domain.Notification{ID: "n-" + s.ID(), Title: "cart saved"})
	reg.Keep(s)
	return s
}

func TestRegistry_AnonymousReuse(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	a := keptAnonymous(reg, "")
	assert.Equal(t, domain.SessionAnonymous, a.State().Status)
	assert.Same(t, a, reg.Anonymous(a.ID()))

	other := reg.Anonymous("unknown")
	assert.NotSame(t, a, other)
	assert.NotEqual(t, "unknown", other.ID(), "ids that are not UUIDs are replaced")
}

func TestRegistry_AnonymousWithoutStateIsNotHeld(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	for i := 0; i < 10000; i++ {
		reg.Keep(reg.Anonymous(""))
	}
	assert.Zero(t, reg.Len())

	// The id survives across requests even though nothing is held.
	first := reg.Anonymous("")
	assert.Equal(t, first.ID(), reg.Anonymous(first.ID()).ID())
}

func TestRegistry_AnonymousCap(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	reg.SetAnonymousLimits(time.Hour, 3)
	now := time.Now()
	tick := 0
	reg.now = func() time.Time {
		tick++
		return now.Add(time.Duration(tick) * time.Second)
	}

	first := keptAnonymous(reg, "")
	for i := 0; i < 4; i++ {
		keptAnonymous(reg, "")
	}

	assert.Equal(t, 3, reg.Len())
	assert.NotSame(t, first, reg.Anonymous(first.ID()), "least recently used session is dropped first")
}

func TestRegistry_EvictIdle(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	reg.SetAnonymousLimits(10*time.Minute, 0)
	now := time.Now()
	reg.now = func() time.Time { return now }

	keptAnonymous(reg, "")
	_, err := reg.Open(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	reg.now = func() time.Time { return now.Add(20 * time.Minute) }
	reg.evictIdle()
	assert.Equal(t, 1, reg.Len(), "anonymous sessions expire first")

	reg.now = func() time.Time { return now.Add(2 * time.Hour) }
	reg.evictIdle()
	assert.Zero(t, reg.Len())
}

func TestSession_InboxSynced(t *testing.T) {
	s := newSession("s-1", time.Now())
	s.Apply(s.Begin(), alice)
	assert.False(t, s.InboxSynced())

	require.True(t, s.ReplaceInbox(s.Generation(), nil))
	assert.True(t, s.InboxSynced())

	s.SignedOut()
	assert.False(t, s.InboxSynced())
}
