package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	appPayment "github.com/lucashq/payflow/internal/application/payment"
	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
	"github.com/lucashq/payflow/internal/domain/payment"
	"github.com/lucashq/payflow/internal/domain/provider"
)

// --- Payment Repository Mock ---

// MockPaymentRepository is an in-memory implementation of the payment store
// port. Mutators route through the domain state machine so tests catch
// illegal transitions the same way the database-backed repository would
// surface inconsistent updates.
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*payment.Payment

	GetFunc              func(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	MarkProcessingFunc   func(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkCompletedFunc    func(ctx context.Context, id uuid.UUID) error
	MarkFailedFunc       func(ctx context.Context, id uuid.UUID, cause string) error
	IncrementAttemptFunc func(ctx context.Context, id uuid.UUID) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[uuid.UUID]*payment.Payment)}
}

// Snapshot returns a deep copy of the store, used by the mock transaction
// manager to emulate rollback.
func (m *MockPaymentRepository) Snapshot() map[uuid.UUID]payment.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]payment.Payment, len(m.payments))
	for id, p := range m.payments {
		cp := *p
		if p.LastTriedAt != nil {
			t := *p.LastTriedAt
			cp.LastTriedAt = &t
		}
		if p.LastError != nil {
			s := *p.LastError
			cp.LastError = &s
		}
		out[id] = cp
	}
	return out
}

// Restore replaces the store contents with a snapshot.
func (m *MockPaymentRepository) Restore(snap map[uuid.UUID]payment.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = make(map[uuid.UUID]*payment.Payment, len(snap))
	for id, p := range snap {
		cp := p
		m.payments[id] = &cp
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

func (m *MockPaymentRepository) Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	cp := *p // callers get a snapshot, like a row read
	return &cp, nil
}

func (m *MockPaymentRepository) List(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*payment.Payment
	for _, p := range m.payments {
		if isAdmin || p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockPaymentRepository) ListFailedForRetry(ctx context.Context, maxAttempts, limit int) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var candidates []*payment.Payment
	for _, p := range m.payments {
		if p.Status == payment.StatusFailed && p.AttemptCount < maxAttempts {
			candidates = append(candidates, p)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return effectiveTriedAt(candidates[i]).Before(effectiveTriedAt(candidates[j]))
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (m *MockPaymentRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for _, p := range m.payments {
		if p.Status == payment.StatusPending && p.CreatedAt.Before(cutoff) {
			ids = append(ids, p.ID)
		}
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (m *MockPaymentRepository) FailStaleProcessing(ctx context.Context, cutoff time.Time, cause string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.payments {
		if p.Status == payment.StatusProcessing && p.LastTriedAt != nil && p.LastTriedAt.Before(cutoff) {
			if err := p.MarkFailed(cause); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func (m *MockPaymentRepository) MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) error {
	if m.MarkProcessingFunc != nil {
		return m.MarkProcessingFunc(ctx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return domainErrors.ErrPaymentNotFound
	}
	return p.MarkProcessing(at)
}

func (m *MockPaymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return domainErrors.ErrPaymentNotFound
	}
	return p.MarkCompleted()
}

func (m *MockPaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, cause)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return domainErrors.ErrPaymentNotFound
	}
	return p.MarkFailed(cause)
}

func (m *MockPaymentRepository) IncrementAttempt(ctx context.Context, id uuid.UUID) error {
	if m.IncrementAttemptFunc != nil {
		return m.IncrementAttemptFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return domainErrors.ErrPaymentNotFound
	}
	p.IncrementAttempt()
	return nil
}

func effectiveTriedAt(p *payment.Payment) time.Time {
	if p.LastTriedAt != nil {
		return *p.LastTriedAt
	}
	return p.CreatedAt
}

// --- Provider Repository Mock ---

// MockProviderRepository backs both the read-only catalog port and the admin
// repository port.
type MockProviderRepository struct {
	mu        sync.Mutex
	providers map[uuid.UUID]*provider.Provider

	GetFunc func(ctx context.Context, id uuid.UUID) (*provider.Provider, error)
}

func NewMockProviderRepository() *MockProviderRepository {
	return &MockProviderRepository{providers: make(map[uuid.UUID]*provider.Provider)}
}

// AddProvider pre-populates the mock.
func (m *MockProviderRepository) AddProvider(p *provider.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[p.ID] = p
}

func (m *MockProviderRepository) Get(ctx context.Context, id uuid.UUID) (*provider.Provider, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.providers[id]
	if !ok {
		return nil, domainErrors.ErrProviderNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProviderRepository) List(ctx context.Context) ([]*provider.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*provider.Provider, 0, len(m.providers))
	for _, p := range m.providers {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockProviderRepository) Create(ctx context.Context, p *provider.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[p.ID] = p
	return nil
}

func (m *MockProviderRepository) Update(ctx context.Context, p *provider.Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[p.ID]; !ok {
		return domainErrors.ErrProviderNotFound
	}
	m.providers[p.ID] = p
	return nil
}

func (m *MockProviderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[id]; !ok {
		return domainErrors.ErrProviderNotFound
	}
	delete(m.providers, id)
	return nil
}

// --- Transaction Manager Mock ---

// MockTransactionManager emulates commit/rollback against the in-memory
// payment store: on error the store is restored to its pre-transaction
// snapshot, which is what lets tests assert transactional atomicity.
type MockTransactionManager struct {
	Store *MockPaymentRepository
}

func NewMockTransactionManager(store *MockPaymentRepository) *MockTransactionManager {
	return &MockTransactionManager{Store: store}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.Store == nil {
		return fn(ctx)
	}
	snap := m.Store.Snapshot()
	if err := fn(ctx); err != nil {
		m.Store.Restore(snap)
		return err
	}
	return nil
}

// --- Queue Mock ---

// MockQueue records enqueued payment ids.
type MockQueue struct {
	mu       sync.Mutex
	Enqueued []uuid.UUID

	EnqueueFunc func(ctx context.Context, paymentID uuid.UUID) error
}

func (m *MockQueue) Enqueue(ctx context.Context, paymentID uuid.UUID) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, paymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Enqueued = append(m.Enqueued, paymentID)
	return nil
}

// --- Notifier Mock ---

// Notification is one recorded Notify call.
type Notification struct {
	PaymentID uuid.UUID
	OwnerID   uuid.UUID
}

// MockNotifier records notifications.
type MockNotifier struct {
	mu            sync.Mutex
	Notifications []Notification
	Err           error
}

func (m *MockNotifier) Notify(ctx context.Context, paymentID, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Notifications = append(m.Notifications, Notification{PaymentID: paymentID, OwnerID: ownerID})
	return nil
}

// --- Gateway Stub ---

// StubGateway returns a fixed result and counts calls, for tests that need
// deterministic provider behavior.
type StubGateway struct {
	mu     sync.Mutex
	Result *appPayment.GatewayResult
	Err    error
	Calls  int
}

func (g *StubGateway) Pay(ctx context.Context, req appPayment.GatewayRequest) (*appPayment.GatewayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls++
	if g.Err != nil {
		return nil, g.Err
	}
	if g.Result != nil {
		return g.Result, nil
	}
	return &appPayment.GatewayResult{Success: true, ProviderRef: "stub_ref"}, nil
}
