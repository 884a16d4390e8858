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

func TestRetryPayment_Success(t *testing.T) {
	ctx := context.Background()
	payments := testutil.NewMockPaymentRepository()
	queue := &testutil.MockQueue{}
	uc := paymentApp.NewRetryPaymentUseCase(payments, queue, maxAttempts)

	p := testutil.NewFailedPayment(t, 1)
	payments.Create(ctx, p)

	if err := uc.Execute(ctx, p.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue.Enqueued) != 1 || queue.Enqueued[0] != p.ID {
		t.Errorf("expected payment %s enqueued once, got %v", p.ID, queue.Enqueued)
	}

	// Retry only enqueues; the pipeline owns all state changes.
	updated, _ := payments.Get(ctx, p.ID)
	if updated.Status != domainPayment.StatusFailed {
		t.Errorf("expected status untouched at failed, got %s", updated.Status)
	}
	if updated.AttemptCount != 1 {
		t.Errorf("expected attempt count untouched at 1, got %d", updated.AttemptCount)
	}
}

func TestRetryPayment_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	payments := testutil.NewMockPaymentRepository()
	queue := &testutil.MockQueue{}
	uc := paymentApp.NewRetryPaymentUseCase(payments, queue, maxAttempts)

	p := testutil.NewFailedPayment(t, 1)
	payments.Create(ctx, p)

	if err := uc.Execute(ctx, p.ID, false); !errors.Is(err, domainErrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(queue.Enqueued) != 0 {
		t.Errorf("expected nothing enqueued, got %v", queue.Enqueued)
	}
}

func TestRetryPayment_NotFound(t *testing.T) {
	ctx := context.Background()
	uc := paymentApp.NewRetryPaymentUseCase(testutil.NewMockPaymentRepository(), &testutil.MockQueue{}, maxAttempts)

	if err := uc.Execute(ctx, uuid.New(), true); !errors.Is(err, domainErrors.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestRetryPayment_OnlyFailedIsRetryable(t *testing.T) {
	ctx := context.Background()

	for _, status := range []domainPayment.Status{
		domainPayment.StatusPending,
		domainPayment.StatusProcessing,
		domainPayment.StatusCompleted,
	} {
		t.Run(string(status), func(t *testing.T) {
			payments := testutil.NewMockPaymentRepository()
			queue := &testutil.MockQueue{}
			uc := paymentApp.NewRetryPaymentUseCase(payments, queue, maxAttempts)

			p := testutil.NewTestPayment(t)
			p.Status = status
			payments.Create(ctx, p)

			if err := uc.Execute(ctx, p.ID, true); !errors.Is(err, domainErrors.ErrNotRetryable) {
				t.Fatalf("expected ErrNotRetryable, got %v", err)
			}
			if len(queue.Enqueued) != 0 {
				t.Errorf("expected nothing enqueued, got %v", queue.Enqueued)
			}
		})
	}
}

func TestRetryPayment_CeilingReached(t *testing.T) {
	ctx := context.Background()
	payments := testutil.NewMockPaymentRepository()
	queue := &testutil.MockQueue{}
	uc := paymentApp.NewRetryPaymentUseCase(payments, queue, maxAttempts)

	p := testutil.NewFailedPayment(t, maxAttempts)
	payments.Create(ctx, p)

	if err := uc.Execute(ctx, p.ID, true); !errors.Is(err, domainErrors.ErrMaxAttemptsReached) {
		t.Fatalf("expected ErrMaxAttemptsReached, got %v", err)
	}
	if len(queue.Enqueued) != 0 {
		t.Errorf("expected nothing enqueued, got %v", queue.Enqueued)
	}
}

func TestGetPayment_OwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	payments := testutil.NewMockPaymentRepository()
	uc := paymentApp.NewGetPaymentUseCase(payments)

	p := testutil.NewTestPayment(t)
	payments.Create(ctx, p)

	if _, err := uc.Execute(ctx, p.ID, uuid.New(), false); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another user's payment, got %v", err)
	}

	got, err := uc.Execute(ctx, p.ID, p.UserID, false)
	if err != nil {
		t.Fatalf("owner should see the payment: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("expected payment %s, got %s", p.ID, got.ID)
	}

	if _, err := uc.Execute(ctx, p.ID, uuid.New(), true); err != nil {
		t.Errorf("admin should see any payment: %v", err)
	}
}

func TestListPayments_ScopesToOwner(t *testing.T) {
	ctx := context.Background()
	payments := testutil.NewMockPaymentRepository()
	uc := paymentApp.NewListPaymentsUseCase(payments)

	mine := testutil.NewTestPayment(t)
	other := testutil.NewTestPayment(t)
	payments.Create(ctx, mine)
	payments.Create(ctx, other)

	got, err := uc.Execute(ctx, mine.UserID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Errorf("expected only own payment, got %d rows", len(got))
	}

	all, err := uc.Execute(ctx, mine.UserID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected admin to see 2 payments, got %d", len(all))
	}
}
