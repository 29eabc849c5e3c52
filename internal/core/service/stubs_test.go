package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

var errStore = errors.New("store unavailable")

type stubUserRepo struct {
	byID     map[string]*domain.User
	err      error
	roleErr  error
	switched []domain.Role
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		r.byID[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id, name, phone string, at time.Time) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Name, u.Phone, u.UpdatedAt = name, phone, at
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) UpdateActiveRole(_ context.Context, id string, active domain.Role, at time.Time) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	next, err := domain.NewRolePair(u.Roles.Granted(), active)
	if err != nil {
		return err
	}
	u.Roles, u.UpdatedAt = next, at
	r.switched = append(r.switched, active)
	return nil
}

func (r *stubUserRepo) FindRoles(_ context.Context, userID string) (domain.RolePair, error) {
	if r.roleErr != nil {
		return domain.RolePair{}, r.roleErr
	}
	u, ok := r.byID[userID]
	if !ok {
		return domain.RolePair{}, domain.ErrUserNotFound
	}
	return u.Roles, nil
}

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	getErr   error
	deleted  []string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *stubSessionStore) Create(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	delete(s.sessions, id)
	return nil
}

type stubNotificationRepo struct {
	items   map[string]*domain.Notification
	created []domain.Notification
	err     error
}

func newStubNotificationRepo(items ...domain.Notification) *stubNotificationRepo {
	r := &stubNotificationRepo{items: make(map[string]*domain.Notification)}
	for i := range items {
		n := items[i]
		r.items[n.ID] = &n
	}
	return r
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.err != nil {
		return r.err
	}
	clone := *n
	r.items[n.ID] = &clone
	r.created = append(r.created, clone)
	return nil
}

func (r *stubNotificationRepo) List(_ context.Context, f ports.NotificationFilter) ([]domain.Notification, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Notification
	for _, n := range r.items {
		if f.UnreadOnly && n.Read {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *stubNotificationRepo) CountUnread(context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, it := range r.items {
		if !it.Read {
			n++
		}
	}
	return n, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id string, at time.Time) (*domain.Notification, error) {
	if r.err != nil {
		return nil, r.err
	}
	n, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	n.Read, n.UpdatedAt = true, at
	clone := *n
	return &clone, nil
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, at time.Time) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var count int64
	for _, n := range r.items {
		if !n.Read {
			n.Read, n.UpdatedAt = true, at
			count++
		}
	}
	return count, nil
}

func (r *stubNotificationRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotificationNotFound
	}
	delete(r.items, id)
	return nil
}

type stubProductRepo struct {
	byID      map[string]*domain.Product
	listCalls int
	err       error
}

func newStubProductRepo(products ...domain.Product) *stubProductRepo {
	r := &stubProductRepo{byID: make(map[string]*domain.Product)}
	for i := range products {
		p := products[i]
		r.byID[p.ID] = &p
	}
	return r
}

func (r *stubProductRepo) List(_ context.Context, f ports.ProductFilter) ([]domain.Product, int64, error) {
	r.listCalls++
	if r.err != nil {
		return nil, 0, r.err
	}
	var out []domain.Product
	for _, p := range r.byID {
		if !p.Active || (f.Category != "" && p.Category != f.Category) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) FindBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for _, p := range r.byID {
		if p.Slug == slug {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) ListInventory(context.Context) ([]domain.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Product
	for _, p := range r.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

func (r *stubProductRepo) UpdateStock(_ context.Context, id string, stock int, at time.Time) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p.Stock, p.UpdatedAt = stock, at
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) DecrementStock(_ context.Context, id string, qty int, at time.Time) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.UpdatedAt = at
	clone := *p
	return &clone, nil
}

type stubOrderRepo struct {
	byID       map[string]*domain.Order
	lastFilter ports.OrderFilter
	statusLog  []domain.OrderStatus
	err        error
	// staleStatus, when set, is what reads report regardless of the stored
	// status, as seen by a request that read before another one wrote.
	staleStatus domain.OrderStatus
}

func newStubOrderRepo(orders ...domain.Order) *stubOrderRepo {
	r := &stubOrderRepo{byID: make(map[string]*domain.Order)}
	for i := range orders {
		o := orders[i]
		r.byID[o.ID] = &o
	}
	return r
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	if r.err != nil {
		return r.err
	}
	clone := *o
	r.byID[o.ID] = &clone
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return r.read(o), nil
}

func (r *stubOrderRepo) read(o *domain.Order) *domain.Order {
	clone := *o
	if r.staleStatus != "" {
		clone.Status = r.staleStatus
	}
	return &clone
}

func (r *stubOrderRepo) FindByCheckoutSession(_ context.Context, sessionID string) (*domain.Order, error) {
	for _, o := range r.byID {
		if o.CheckoutSessionID == sessionID {
			return r.read(o), nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) CountByStatus(_ context.Context, status domain.OrderStatus) (int64, error) {
	var n int64
	for _, o := range r.byID {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *stubOrderRepo) List(_ context.Context, f ports.OrderFilter) ([]domain.Order, int64, error) {
	r.lastFilter = f
	if r.err != nil {
		return nil, 0, r.err
	}
	var out []domain.Order
	for _, o := range r.byID {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) TransitionStatus(_ context.Context, id string, from, to domain.OrderStatus, at time.Time) error {
	o, ok := r.byID[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrOrderStatusChanged
	}
	o.Status, o.UpdatedAt = to, at
	r.statusLog = append(r.statusLog, to)
	return nil
}

type stubAddressRepo struct {
	byID map[string]*domain.Address
}

func newStubAddressRepo() *stubAddressRepo {
	return &stubAddressRepo{byID: make(map[string]*domain.Address)}
}

func (r *stubAddressRepo) ListByUser(_ context.Context, userID string) ([]domain.Address, error) {
	var out []domain.Address
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAddressRepo) Create(_ context.Context, a *domain.Address) error {
	if a.IsDefault {
		r.clearDefault(a.UserID)
	}
	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *stubAddressRepo) Update(_ context.Context, a *domain.Address) error {
	existing, ok := r.byID[a.ID]
	if !ok || existing.UserID != a.UserID {
		return domain.ErrAddressNotFound
	}
	if a.IsDefault {
		r.clearDefault(a.UserID)
	}
	a.CreatedAt = existing.CreatedAt
	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *stubAddressRepo) Delete(_ context.Context, userID, id string) error {
	existing, ok := r.byID[id]
	if !ok || existing.UserID != userID {
		return domain.ErrAddressNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubAddressRepo) clearDefault(userID string) {
	for _, a := range r.byID {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
}

func (r *stubAddressRepo) defaults(userID string) int {
	n := 0
	for _, a := range r.byID {
		if a.UserID == userID && a.IsDefault {
			n++
		}
	}
	return n
}

// stubCache keeps entries as values; Get copies by type assertion through
// the page/product types the catalog uses.
type stubCache struct {
	entries     map[string]any
	tags        map[string][]string
	invalidated [][]string
	getErr      error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]any), tags: make(map[string][]string)}
}

func (c *stubCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	v, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *ports.ProductPage:
		*d = *(v.(*ports.ProductPage))
	case *domain.Product:
		*d = *(v.(*domain.Product))
	default:
		return false, nil
	}
	return true, nil
}

func (c *stubCache) Set(_ context.Context, key string, v any, tags []string) error {
	c.entries[key] = v
	for _, t := range tags {
		c.tags[t] = append(c.tags[t], key)
	}
	return nil
}

func (c *stubCache) InvalidateTags(_ context.Context, tags ...string) (int64, error) {
	c.invalidated = append(c.invalidated, tags)
	var n int64
	for _, t := range tags {
		for _, k := range c.tags[t] {
			if _, ok := c.entries[k]; ok {
				delete(c.entries, k)
				n++
			}
		}
		delete(c.tags, t)
	}
	return n, nil
}

type stubAnalyticsRepo struct {
	events   []domain.AnalyticsEvent
	summary  *domain.AnalyticsSummary
	err      error
	from, to time.Time
}

func (r *stubAnalyticsRepo) Insert(_ context.Context, e *domain.AnalyticsEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *stubAnalyticsRepo) Summarize(_ context.Context, from, to time.Time, _ int) (*domain.AnalyticsSummary, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.from, r.to = from, to
	if r.summary != nil {
		return r.summary, nil
	}
	return &domain.AnalyticsSummary{From: from, To: to}, nil
}

type stubNotifier struct {
	kinds  []domain.NotificationKind
	titles []string
}

func (n *stubNotifier) Notify(_ context.Context, kind domain.NotificationKind, title, _, _ string) error {
	n.kinds = append(n.kinds, kind)
	n.titles = append(n.titles, title)
	return nil
}

type stubMailer struct {
	sent []domain.Email
	err  error
}

func (m *stubMailer) Send(_ context.Context, e domain.Email) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, e)
	return "msg_1", nil
}

type stubPayments struct {
	sessions []ports.CheckoutSessionInput
	promos   map[string]*ports.PromotionCode
	coupons  []ports.CouponInput
	event    *ports.PaymentEvent
	parseErr error
}

func (p *stubPayments) CreateCheckoutSession(_ context.Context, in ports.CheckoutSessionInput) (*ports.CheckoutSession, error) {
	p.sessions = append(p.sessions, in)
	return &ports.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (p *stubPayments) FindPromotionCode(_ context.Context, code string) (*ports.PromotionCode, error) {
	if promo, ok := p.promos[code]; ok {
		return promo, nil
	}
	return nil, domain.ErrInvalidPromotionCode
}

func (p *stubPayments) CreateCoupon(_ context.Context, in ports.CouponInput) (*ports.PromotionCode, error) {
	p.coupons = append(p.coupons, in)
	return &ports.PromotionCode{ID: "promo_1", Code: in.Code, CouponID: "coupon_1", PercentOff: in.PercentOff}, nil
}

func (p *stubPayments) ParseWebhook([]byte, string) (*ports.PaymentEvent, error) {
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.event, nil
}

// ---------------------------------------------------------------------------
// Viewer helpers
// ---------------------------------------------------------------------------

func mustRoles(granted, active domain.Role) domain.RolePair {
	p, err := domain.NewRolePair(granted, active)
	if err != nil {
		panic(err)
	}
	return p
}

func adminViewer() domain.Viewer {
	return domain.Authenticated("admin-1", "sess-a", mustRoles(domain.RoleAdmin, domain.RoleAdmin))
}

func adminInUserMode() domain.Viewer {
	return domain.Authenticated("admin-1", "sess-a", mustRoles(domain.RoleAdmin, domain.RoleUser))
}

func userViewer() domain.Viewer {
	return domain.Authenticated("user-1", "sess-u", domain.UserRoles())
}
