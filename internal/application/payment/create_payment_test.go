package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	paymentApp "github.com/lucashq/payflow/internal/application/payment"
	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
	domainPayment "github.com/lucashq/payflow/internal/domain/payment"
	"github.com/lucashq/payflow/internal/testutil"
)

const maxAmountCents = 1_000_000_00

type createDeps struct {
	payments *testutil.MockPaymentRepository
	catalog  *testutil.MockProviderRepository
	queue    *testutil.MockQueue
	uc       *paymentApp.CreatePaymentUseCase
}

func newCreateDeps() *createDeps {
	payments := testutil.NewMockPaymentRepository()
	catalog := testutil.NewMockProviderRepository()
	queue := &testutil.MockQueue{}
	uc := paymentApp.NewCreatePaymentUseCase(
		payments,
		catalog,
		testutil.NewMockTransactionManager(payments),
		queue,
		maxAmountCents,
	)
	return &createDeps{payments: payments, catalog: catalog, queue: queue, uc: uc}
}

func TestCreatePayment_Success(t *testing.T) {
	ctx := context.Background()
	d := newCreateDeps()

	prov := testutil.NewTestProvider(t)
	d.catalog.AddProvider(prov)
	userID := uuid.New()

	id, err := d.uc.Execute(ctx, paymentApp.CreatePaymentRequest{
		ProviderID:  prov.ID,
		AmountCents: 25_99,
		Currency:    "usd",
		Reference:   "  order-42  ",
	}, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := d.payments.Get(ctx, id)
	if err != nil {
		t.Fatalf("created payment not persisted: %v", err)
	}
	if p.Status != domainPayment.StatusPending {
		t.Errorf("expected status pending, got %s", p.Status)
	}
	if p.Currency != "USD" {
		t.Errorf("expected currency normalized to USD, got %s", p.Currency)
	}
	if p.Reference != "order-42" {
		t.Errorf("expected reference trimmed, got %q", p.Reference)
	}
	if p.UserID != userID {
		t.Errorf("expected owner %s, got %s", userID, p.UserID)
	}
	if p.AttemptCount != 0 {
		t.Errorf("expected attempt count 0, got %d", p.AttemptCount)
	}

	if len(d.queue.Enqueued) != 1 || d.queue.Enqueued[0] != id {
		t.Errorf("expected payment %s enqueued once, got %v", id, d.queue.Enqueued)
	}
}

func TestCreatePayment_ProviderNotFound(t *testing.T) {
	ctx := context.Background()
	d := newCreateDeps()

	_, err := d.uc.Execute(ctx, paymentApp.CreatePaymentRequest{
		ProviderID:  uuid.New(),
		AmountCents: 10_00,
		Currency:    "USD",
	}, uuid.New())
	if !errors.Is(err, domainErrors.ErrProviderNotFound) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
	if len(d.queue.Enqueued) != 0 {
		t.Errorf("expected nothing enqueued, got %v", d.queue.Enqueued)
	}
}

func TestCreatePayment_ProviderInactive(t *testing.T) {
	ctx := context.Background()
	d := newCreateDeps()

	prov := testutil.NewTestProvider(t)
	prov.IsActive = false
	d.catalog.AddProvider(prov)

	_, err := d.uc.Execute(ctx, paymentApp.CreatePaymentRequest{
		ProviderID:  prov.ID,
		AmountCents: 10_00,
		Currency:    "USD",
	}, uuid.New())
	if !errors.Is(err, domainErrors.ErrProviderInactive) {
		t.Fatalf("expected ErrProviderInactive, got %v", err)
	}
}

func TestCreatePayment_AmountValidation(t *testing.T) {
	ctx := context.Background()
	d := newCreateDeps()

	prov := testutil.NewTestProvider(t)
	d.catalog.AddProvider(prov)

	cases := []struct {
		name   string
		amount int64
	}{
		{"zero", 0},
		{"negative", -5_00},
		{"over ceiling", maxAmountCents + 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := d.uc.Execute(ctx, paymentApp.CreatePaymentRequest{
				ProviderID:  prov.ID,
				AmountCents: tc.amount,
				Currency:    "USD",
			}, uuid.New())
			if !errors.Is(err, domainErrors.ErrValidationFailed) {
				t.Fatalf("expected validation failure, got %v", err)
			}
		})
	}
}

func TestCreatePayment_InvalidCurrency(t *testing.T) {
	ctx := context.Background()
	d := newCreateDeps()

	prov := testutil.NewTestProvider(t)
	d.catalog.AddProvider(prov)

	_, err := d.uc.Execute(ctx, paymentApp.CreatePaymentRequest{
		ProviderID:  prov.ID,
		AmountCents: 10_00,
		Currency:    "DOLLARS",
	}, uuid.New())
	if !errors.Is(err, domainErrors.ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestCreatePayment_EnqueueFailure_Surfaces(t *testing.T) {
	ctx := context.Background()
	d := newCreateDeps()
	d.queue.EnqueueFunc = func(ctx context.Context, paymentID uuid.UUID) error {
		return errors.New("stream unavailable")
	}

	prov := testutil.NewTestProvider(t)
	d.catalog.AddProvider(prov)

	_, err := d.uc.Execute(ctx, paymentApp.CreatePaymentRequest{
		ProviderID:  prov.ID,
		AmountCents: 10_00,
		Currency:    "USD",
	}, uuid.New())
	if err == nil {
		t.Fatal("expected enqueue failure to surface")
	}

	// The row stays committed; the stale-pending sweep recovers it.
	payments, _ := d.payments.List(ctx, uuid.Nil, true)
	if len(payments) != 1 {
		t.Fatalf("expected the pending row to survive, got %d rows", len(payments))
	}
	if payments[0].Status != domainPayment.StatusPending {
		t.Errorf("expected status pending, got %s", payments[0].Status)
	}
}
