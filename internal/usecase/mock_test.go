//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/adapter"
	"fideliza/internal/domain/ports/repository"
)

// =============================
// Repository mocks
// =============================

// ---- Mock SubscriptionCodeRepository ----

type MockCodeRepo struct {
	mu     sync.Mutex
	byCode map[string]*model.SubscriptionCode

	CreateFunc     func(ctx context.Context, tx repository.Tx, c *model.SubscriptionCode) error
	ExistsFunc     func(ctx context.Context, tx repository.Tx, code string) (bool, error)
	FindByCodeFunc func(ctx context.Context, tx repository.Tx, code string) (*model.SubscriptionCode, error)
	MarkUsedFunc   func(ctx context.Context, tx repository.Tx, id string) (bool, error)
}

var _ repository.SubscriptionCodeRepository = (*MockCodeRepo)(nil)

func NewMockCodeRepo() *MockCodeRepo {
	return &MockCodeRepo{byCode: map[string]*model.SubscriptionCode{}}
}

func (r *MockCodeRepo) Create(ctx context.Context, tx repository.Tx, c *model.SubscriptionCode) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, c)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCode[c.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *c
	r.byCode[c.Code] = &cp
	return nil
}

func (r *MockCodeRepo) Exists(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	if r.ExistsFunc != nil {
		return r.ExistsFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byCode[code]
	return ok, nil
}

func (r *MockCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.SubscriptionCode, error) {
	if r.FindByCodeFunc != nil {
		return r.FindByCodeFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byCode[code]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	if r.MarkUsedFunc != nil {
		return r.MarkUsedFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byCode {
		if c.ID != id {
			continue
		}
		if c.IsUsed {
			return false, nil
		}
		now := time.Now()
		c.IsUsed = true
		c.UsedAt = &now
		return true, nil
	}
	return false, nil
}

func (r *MockCodeRepo) Get(code string) *model.SubscriptionCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byCode[code]; ok {
		cp := *c
		return &cp
	}
	return nil
}

func (r *MockCodeRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byCode)
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	byID map[string]*model.UserSubscription

	SaveFunc             func(ctx context.Context, tx repository.Tx, s *model.UserSubscription) error
	FindByIDFunc         func(ctx context.Context, tx repository.Tx, id string) (*model.UserSubscription, error)
	ConsumeVisitFunc     func(ctx context.Context, tx repository.Tx, id string) (int, error)
	TouchLastPaymentFunc func(ctx context.Context, tx repository.Tx, id string, at time.Time) error
	ExpireDueFunc        func(ctx context.Context, tx repository.Tx, now time.Time) (int, error)
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{byID: map[string]*model.UserSubscription{}}
}

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.UserSubscription) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserSubscription, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byID[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriptionRepo) FindFirstByPlan(ctx context.Context, tx repository.Tx, planID string) (*model.UserSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first *model.UserSubscription
	for _, s := range r.byID {
		if s.SubscriptionID != planID {
			continue
		}
		if first == nil || s.CreatedAt.Before(first.CreatedAt) {
			first = s
		}
	}
	if first == nil {
		return nil, domain.ErrNotFound
	}
	cp := *first
	return &cp, nil
}

func (r *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.UserSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.UserSubscription
	for _, s := range r.byID {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MockSubscriptionRepo) ConsumeVisit(ctx context.Context, tx repository.Tx, id string) (int, error) {
	if r.ConsumeVisitFunc != nil {
		return r.ConsumeVisitFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if s.RemainingVisits > 0 {
		s.RemainingVisits--
	}
	return s.RemainingVisits, nil
}

func (r *MockSubscriptionRepo) TouchLastPayment(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	if r.TouchLastPaymentFunc != nil {
		return r.TouchLastPaymentFunc(ctx, tx, id, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	t := at
	s.LastPayment = &t
	return nil
}

func (r *MockSubscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus, isActive bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	s.IsActive = isActive
	return nil
}

func (r *MockSubscriptionRepo) ExpireDue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	if r.ExpireDueFunc != nil {
		return r.ExpireDueFunc(ctx, tx, now)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.byID {
		if s.Due(now) {
			s.Status = model.SubscriptionStatusExpired
			s.IsActive = false
			n++
		}
	}
	return n, nil
}

func (r *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.SubscriptionStatus]int{}
	for _, s := range r.byID {
		out[s.Status]++
	}
	return out, nil
}

func (r *MockSubscriptionRepo) Get(id string) *model.UserSubscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byID[id]; ok {
		cp := *s
		return &cp
	}
	return nil
}

func (r *MockSubscriptionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// ---- Mock SubscriptionPlanRepository ----

type MockPlanRepo struct {
	mu    sync.Mutex
	plans map[string]*model.SubscriptionPlan

	SaveFunc     func(ctx context.Context, tx repository.Tx, p *model.SubscriptionPlan) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error)
}

var _ repository.SubscriptionPlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{plans: map[string]*model.SubscriptionPlan{}}
}

func (r *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.SubscriptionPlan) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.plans[p.ID] = &cp
	return nil
}

func (r *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.plans[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPlanRepo) ListByPlace(ctx context.Context, tx repository.Tx, placeID string, onlyActive bool) ([]*model.SubscriptionPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.SubscriptionPlan
	for _, p := range r.plans {
		if p.PlaceID != placeID || (onlyActive && !p.Purchasable()) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MockPlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsActive = false
	p.Status = model.PlanStatusInactive
	return nil
}

// ---- Mock PlaceRepository ----

type MockPlaceRepo struct {
	mu     sync.Mutex
	places map[string]*model.Place
}

var _ repository.PlaceRepository = (*MockPlaceRepo)(nil)

func NewMockPlaceRepo() *MockPlaceRepo {
	return &MockPlaceRepo{places: map[string]*model.Place{}}
}

func (r *MockPlaceRepo) SaveRestaurant(ctx context.Context, tx repository.Tx, rest *model.Restaurant) error {
	return nil
}

func (r *MockPlaceRepo) Save(ctx context.Context, tx repository.Tx, p *model.Place) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.places[p.ID] = &cp
	return nil
}

func (r *MockPlaceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Place, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.places[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPlaceRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.Place, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Place
	for _, p := range r.places {
		if p.OwnerID == ownerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.Mutex
	byID map[string]*model.User
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu   sync.Mutex
	byTx map[string]*model.Payment

	InsertFunc func(ctx context.Context, tx repository.Tx, p *model.Payment) error
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{byTx: map[string]*model.Payment{}}
}

func (r *MockPaymentRepo) Insert(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTx[p.TransactionID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *p
	r.byTx[p.TransactionID] = &cp
	return nil
}

func (r *MockPaymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byTx[transactionID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) ListBySubscription(ctx context.Context, tx repository.Tx, userSubscriptionID string) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.byTx {
		if p.UserSubscriptionID == userSubscriptionID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPaymentRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byTx)
}

// ---- Mock ValidationRepository ----

type MockValidationRepo struct {
	mu   sync.Mutex
	rows []*model.SubscriptionValidation

	LastFilter repository.ValidationFilter
	InsertFunc func(ctx context.Context, tx repository.Tx, v *model.SubscriptionValidation) error
}

var _ repository.ValidationRepository = (*MockValidationRepo)(nil)

func NewMockValidationRepo() *MockValidationRepo { return &MockValidationRepo{} }

func (r *MockValidationRepo) Insert(ctx context.Context, tx repository.Tx, v *model.SubscriptionValidation) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, tx, v)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *MockValidationRepo) List(ctx context.Context, tx repository.Tx, f repository.ValidationFilter) ([]*model.SubscriptionValidation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LastFilter = f
	var out []*model.SubscriptionValidation
	for i := len(r.rows) - 1; i >= 0; i-- {
		v := r.rows[i]
		if v.OwnerID != f.OwnerID || (f.PlaceID != "" && v.PlaceID != f.PlaceID) {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockValidationRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// =============================
// Transactions and locks
// =============================

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// MockLocker records the keys it was asked to lock.
type MockLocker struct {
	mu   sync.Mutex
	Keys []string
	Err  error
}

var _ repository.Locker = (*MockLocker)(nil)

func (l *MockLocker) LockKey(ctx context.Context, tx repository.Tx, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Keys = append(l.Keys, key)
	return l.Err
}

// =============================
// Adapter mocks
// =============================

type MockPaymentGateway struct {
	mu       sync.Mutex
	Requests []adapter.CheckoutRequest

	CreateCheckoutFunc func(ctx context.Context, req adapter.CheckoutRequest) (*adapter.CheckoutSession, error)
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) CreateCheckout(ctx context.Context, req adapter.CheckoutRequest) (*adapter.CheckoutSession, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, req)
	}
	return &adapter.CheckoutSession{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

func (m *MockPaymentGateway) ParseWebhook(payload []byte, signatureHeader string) (*adapter.PaymentCompleted, bool, error) {
	return nil, false, nil
}

type MockMailer struct {
	mu   sync.Mutex
	Sent []adapter.Message
	Err  error
}

var _ adapter.Mailer = (*MockMailer)(nil)

func (m *MockMailer) Send(ctx context.Context, msg adapter.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *MockMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// =============================
// Helpers
// =============================

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time { return func() time.Time { return testNow } }

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func strPtr(s string) *string { return &s }

// world is a small tenant graph: one owner with one place and plan, one
// customer with an active subscription, and a second unrelated owner.
type world struct {
	codes       *MockCodeRepo
	subs        *MockSubscriptionRepo
	plans       *MockPlanRepo
	places      *MockPlaceRepo
	users       *MockUserRepo
	payments    *MockPaymentRepo
	validations *MockValidationRepo
	tm          *MockTxManager

	owner    domain.Actor
	staff    domain.Actor
	stranger domain.Actor
	customer domain.Actor

	place *model.Place
	plan  *model.SubscriptionPlan
	sub   *model.UserSubscription
}

func newWorld() *world {
	w := &world{
		codes:       NewMockCodeRepo(),
		subs:        NewMockSubscriptionRepo(),
		plans:       NewMockPlanRepo(),
		places:      NewMockPlaceRepo(),
		users:       NewMockUserRepo(),
		payments:    NewMockPaymentRepo(),
		validations: NewMockValidationRepo(),
		tm:          NewMockTxManager(),

		owner:    domain.Actor{UserID: "owner-1", Email: "owner@example.com", Role: domain.RoleOwner},
		staff:    domain.Actor{UserID: "staff-1", Email: "staff@example.com", Role: domain.RoleStaff, OwnerID: strPtr("owner-1")},
		stranger: domain.Actor{UserID: "owner-2", Email: "other@example.com", Role: domain.RoleOwner},
		customer: domain.Actor{UserID: "cust-1", Email: "ana@example.com", Role: domain.RoleCustomer},
	}
	ctx := context.Background()

	w.place = &model.Place{ID: "place-1", RestaurantID: "rest-1", OwnerID: "owner-1", Name: "Casa Centro"}
	_ = w.places.Save(ctx, repository.NoTX, w.place)
	_ = w.places.Save(ctx, repository.NoTX, &model.Place{ID: "place-2", RestaurantID: "rest-2", OwnerID: "owner-2", Name: "Elsewhere"})

	_ = w.users.Save(ctx, repository.NoTX, &model.User{ID: "cust-1", Email: "ana@example.com", Name: "Ana", Role: domain.RoleCustomer})

	w.plan = &model.SubscriptionPlan{ID: "plan-1", PlaceID: "place-1", Name: "Coffee Club", IsActive: true, Status: model.PlanStatusActive, Visits: 4}
	_ = w.plans.Save(ctx, repository.NoTX, w.plan)

	w.sub, _ = model.NewUserSubscription("us-1", "cust-1", "place-1", w.plan, testNow.Add(-24*time.Hour))
	_ = w.subs.Save(ctx, repository.NoTX, w.sub)
	return w
}

// seedCode stores an unused code for the world's subscription.
func (w *world) seedCode(code string, createdAt time.Time) *model.SubscriptionCode {
	c := model.NewSubscriptionCode("code-"+code, code, w.sub.ID, createdAt)
	_ = w.codes.Create(context.Background(), repository.NoTX, c)
	return c
}
