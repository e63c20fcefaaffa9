package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
	"github.com/clikenova/storefront/internal/core/session"
)

var (
	errBoom = errors.New("boom")
	nopLog  = zerolog.Nop()
)

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

type stubCredentials struct {
	byEmail   map[string]string // email -> password
	ids       map[string]string // email -> user id
	signUpErr error
	signInErr error
	signedOut []string
	deleted   []string
}

func newStubCredentials() *stubCredentials {
	return &stubCredentials{byEmail: make(map[string]string), ids: make(map[string]string)}
}

func (c *stubCredentials) SignUp(_ context.Context, email, password string) (*ports.Credential, error) {
	if c.signUpErr != nil {
		return nil, c.signUpErr
	}
	if _, ok := c.byEmail[email]; ok {
		return nil, domain.ErrEmailTaken
	}
	c.byEmail[email] = password
	c.ids[email] = "u-" + strings.Split(email, "@")[0]
	return &ports.Credential{UserID: c.ids[email], Email: email}, nil
}

func (c *stubCredentials) SignIn(_ context.Context, email, password string) (*ports.Credential, error) {
	if c.signInErr != nil {
		return nil, c.signInErr
	}
	if pw, ok := c.byEmail[email]; !ok || pw != password {
		return nil, domain.ErrInvalidCredentials
	}
	return &ports.Credential{UserID: c.ids[email], Email: email}, nil
}

func (c *stubCredentials) SignOut(_ context.Context, userID string) error {
	c.signedOut = append(c.signedOut, userID)
	return nil
}

func (c *stubCredentials) DeleteUser(_ context.Context, userID string) error {
	c.deleted = append(c.deleted, userID)
	for email, id := range c.ids {
		if id == userID {
			delete(c.ids, email)
			delete(c.byEmail, email)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Identities
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	byID      map[string]*domain.Identity
	createErr error
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{byID: make(map[string]*domain.Identity)}
}

func (r *stubIdentityRepo) Create(_ context.Context, i *domain.Identity) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *i
	r.byID[i.ID] = &cp
	return nil
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	cp := *i
	return &cp, nil
}

func (r *stubIdentityRepo) SetActive(_ context.Context, id string, active bool) error {
	i, ok := r.byID[id]
	if !ok {
		return domain.ErrIdentityNotFound
	}
	i.Active = active
	return nil
}

func (r *stubIdentityRepo) List(_ context.Context, role domain.Role, limit int) ([]*domain.Identity, error) {
	var out []*domain.Identity
	for _, i := range r.byID {
		if role == "" || i.Role == role {
			cp := *i
			out = append(out, &cp)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubIdentityRepo) CountByRole(context.Context) (map[domain.Role]int64, error) {
	out := make(map[domain.Role]int64)
	for _, i := range r.byID {
		out[i.Role]++
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

type stubSessions struct {
	opened []*session.Session
	ended  []string
	err    error
	endErr error
}

func (s *stubSessions) Open(_ context.Context, identity *domain.Identity) (ports.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	sess := authenticated(identity)
	s.opened = append(s.opened, sess)
	return sess, nil
}

func (s *stubSessions) End(_ context.Context, id string) error {
	s.ended = append(s.ended, id)
	return s.endErr
}

type noopSessionStore struct{}

func (noopSessionStore) Save(context.Context, string, string, time.Duration) error { return nil }
func (noopSessionStore) Lookup(context.Context, string) (string, error)           { return "", domain.ErrSessionNotFound }
func (noopSessionStore) Delete(context.Context, string) error                     { return nil }
func (noopSessionStore) DeleteByUser(context.Context, string) error               { return nil }

// authenticated returns a resolved session for identity, built through a
// registry so that the production state machine is exercised.
func authenticated(identity *domain.Identity) *session.Session {
	reg := session.NewRegistry(noopSessionStore{}, nil, nil, time.Hour, nopLog)
	s, err := reg.Open(context.Background(), identity)
	if err != nil {
		panic(err)
	}
	return s.(*session.Session)
}

func anonymousSession() *session.Session {
	return session.NewAnonymous(uuid.NewString())
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

type stubNotificationRepo struct {
	mu        sync.Mutex
	items     []domain.Notification
	seq       int
	insertErr error
	markErr   error
	deleteErr error
	listErr   error
}

func (r *stubNotificationRepo) Insert(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	r.seq++
	cp := *n
	cp.ID = fmt.Sprintf("srv-%03d", r.seq)
	r.items = append(r.items, cp)
	return &cp, nil
}

func (r *stubNotificationRepo) ListRecent(_ context.Context, owner string, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Notification
	for _, n := range r.items {
		if n.OwnerID == owner {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].OwnerID == owner {
			r.items[i].Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *stubNotificationRepo) DeleteByOwner(_ context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.items[:0]
	for _, n := range r.items {
		if n.OwnerID != owner {
			kept = append(kept, n)
		}
	}
	r.items = kept
	return nil
}

func (r *stubNotificationRepo) count(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.OwnerID == owner {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	byID      map[string]*domain.Product
	createErr error
	bumped    []string
}

func newStubProductRepo(products ...*domain.Product) *stubProductRepo {
	r := &stubProductRepo{byID: make(map[string]*domain.Product)}
	for _, p := range products {
		r.byID[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) List(_ context.Context, f ports.ProductFilter) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.byID {
		if f.ProducerID != "" && p.ProducerID != f.ProducerID {
			continue
		}
		if !f.IncludeInactive && !p.Active {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *stubProductRepo) SetActive(_ context.Context, id, producerID string, active bool) error {
	p, ok := r.byID[id]
	if !ok || p.ProducerID != producerID {
		return domain.ErrProductNotFound
	}
	p.Active = active
	return nil
}

func (r *stubProductRepo) IncrementSales(_ context.Context, id string) error {
	r.bumped = append(r.bumped, id)
	if p, ok := r.byID[id]; ok {
		p.SalesCount++
	}
	return nil
}

func (r *stubProductRepo) Count(context.Context) (int64, error) { return int64(len(r.byID)), nil }

type stubCourseRepo struct {
	outline *domain.CourseOutline
}

func (r *stubCourseRepo) Outline(context.Context, string) (*domain.CourseOutline, error) {
	if r.outline == nil {
		return nil, domain.ErrProductNotFound
	}
	cp := *r.outline
	cp.Modules = make([]domain.ModuleOutline, len(r.outline.Modules))
	for i, m := range r.outline.Modules {
		cp.Modules[i] = m
		cp.Modules[i].Videos = append([]domain.Video(nil), m.Videos...)
	}
	return &cp, nil
}

func (r *stubCourseRepo) SaveOutline(_ context.Context, o *domain.CourseOutline) error {
	r.outline = o
	return nil
}

// ---------------------------------------------------------------------------
// Purchases
// ---------------------------------------------------------------------------

type stubPurchaseRepo struct {
	byID      map[string]*domain.Purchase
	createErr error
	// beforeCreate, when set, runs at the start of Create.
	beforeCreate func()
}

func newStubPurchaseRepo() *stubPurchaseRepo {
	return &stubPurchaseRepo{byID: make(map[string]*domain.Purchase)}
}

func (r *stubPurchaseRepo) Create(_ context.Context, p *domain.Purchase) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	if r.createErr != nil {
		return r.createErr
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *stubPurchaseRepo) FindByID(_ context.Context, id, userID string) (*domain.Purchase, error) {
	p, ok := r.byID[id]
	if !ok || (userID != "" && p.UserID != userID) {
		return nil, domain.ErrPurchaseNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPurchaseRepo) ListByUser(_ context.Context, userID string) ([]*domain.Purchase, error) {
	var out []*domain.Purchase
	for _, p := range r.byID {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubPurchaseRepo) HasPurchased(_ context.Context, userID, productID string) (bool, error) {
	for _, p := range r.byID {
		if p.UserID == userID && p.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPurchaseRepo) Count(context.Context) (int64, error) { return int64(len(r.byID)), nil }

// ---------------------------------------------------------------------------
// Coupons, idempotency, commission queue
// ---------------------------------------------------------------------------

type stubCoupons struct {
	coupons map[string]*domain.Coupon
}

func (c *stubCoupons) Validate(_ context.Context, code string) (*domain.Coupon, error) {
	if cp, ok := c.coupons[strings.ToUpper(code)]; ok {
		out := *cp
		return &out, nil
	}
	return nil, domain.ErrCouponRejected
}

type stubIdempotency struct {
	mu       sync.Mutex
	keys     map[string]string
	claimErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Claim(_ context.Context, owner, key string) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return false, "", s.claimErr
	}
	if id, ok := s.keys[owner+":"+key]; ok {
		return false, id, nil
	}
	s.keys[owner+":"+key] = ""
	return true, "", nil
}

func (s *stubIdempotency) Complete(_ context.Context, owner, key, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[owner+":"+key] = id
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, owner, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, owner+":"+key)
	return nil
}

type recordingQueue struct {
	events []ports.CommissionEvent
}

func (q *recordingQueue) Enqueue(ev ports.CommissionEvent) { q.events = append(q.events, ev) }

// ---------------------------------------------------------------------------
// Affiliates and withdrawals
// ---------------------------------------------------------------------------

type stubAffiliateRepo struct {
	byUser  map[string]*domain.Affiliate
	sales   []domain.AffiliateSale
	saleErr error
}

func newStubAffiliateRepo() *stubAffiliateRepo {
	return &stubAffiliateRepo{byUser: make(map[string]*domain.Affiliate)}
}

func (r *stubAffiliateRepo) Create(_ context.Context, a *domain.Affiliate) error {
	cp := *a
	r.byUser[a.UserID] = &cp
	return nil
}

func (r *stubAffiliateRepo) FindByUser(_ context.Context, userID string) (*domain.Affiliate, error) {
	a, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrAffiliateNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubAffiliateRepo) FindByCode(_ context.Context, code string) (*domain.Affiliate, error) {
	for _, a := range r.byUser {
		if a.ReferralCode == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAffiliateNotFound
}

func (r *stubAffiliateRepo) RecordSale(_ context.Context, sale *domain.AffiliateSale) error {
	if r.saleErr != nil {
		return r.saleErr
	}
	for _, s := range r.sales {
		if s.PurchaseID == sale.PurchaseID {
			return domain.ErrDuplicateSale
		}
	}
	r.sales = append(r.sales, *sale)
	return nil
}

func (r *stubAffiliateRepo) ListSales(_ context.Context, affiliateID string) ([]domain.AffiliateSale, error) {
	var out []domain.AffiliateSale
	for _, s := range r.sales {
		if s.AffiliateID == affiliateID {
			out = append(out, s)
		}
	}
	return out, nil
}

type stubWithdrawalRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Withdrawal
}

func newStubWithdrawalRepo() *stubWithdrawalRepo {
	return &stubWithdrawalRepo{byID: make(map[string]*domain.Withdrawal)}
}

func (r *stubWithdrawalRepo) Create(_ context.Context, w *domain.Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.byID[w.ID] = &cp
	return nil
}

func (r *stubWithdrawalRepo) FindByID(_ context.Context, id string) (*domain.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *stubWithdrawalRepo) ListByUser(_ context.Context, userID string) ([]*domain.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Withdrawal
	for _, w := range r.byID {
		if w.UserID == userID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubWithdrawalRepo) ListByStatus(_ context.Context, status domain.WithdrawalStatus) ([]*domain.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Withdrawal
	for _, w := range r.byID {
		if status == "" || w.Status == status {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubWithdrawalRepo) UpdateStatus(_ context.Context, id string, from, to domain.WithdrawalStatus, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byID[id]
	if !ok {
		return domain.ErrWithdrawalNotFound
	}
	if w.Status != from {
		return domain.ErrInvalidTransition
	}
	w.Status = to
	return nil
}

// memLocker serializes names within the test process.
type memLocker struct {
	mu    sync.Mutex
	names map[string]*sync.Mutex
	err   error
}

func newMemLocker() *memLocker {
	return &memLocker{names: make(map[string]*sync.Mutex)}
}

func (l *memLocker) Lock(_ context.Context, name string) (func(), error) {
	l.mu.Lock()
	if l.err != nil {
		l.mu.Unlock()
		return nil, l.err
	}
	m, ok := l.names[name]
	if !ok {
		m = &sync.Mutex{}
		l.names[name] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
