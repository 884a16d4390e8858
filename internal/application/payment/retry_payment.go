package payment

import (
	"context"

	"github.com/google/uuid"

	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
	"github.com/lucashq/payflow/internal/domain/payment"
)

// RetryPaymentUseCase re-enqueues a failed payment on behalf of an
// administrator. It never mutates payment state itself; the pipeline owns
// all mutation.
type RetryPaymentUseCase struct {
	payments    Repository
	queue       Queue
	maxAttempts int
}

// NewRetryPaymentUseCase creates a new RetryPaymentUseCase.
func NewRetryPaymentUseCase(payments Repository, queue Queue, maxAttempts int) *RetryPaymentUseCase {
	return &RetryPaymentUseCase{
		payments:    payments,
		queue:       queue,
		maxAttempts: maxAttempts,
	}
}

// Execute checks the retry preconditions in order (authorization, existence,
// status, ceiling) and enqueues the payment if all hold.
func (uc *RetryPaymentUseCase) Execute(ctx context.Context, paymentID uuid.UUID, isAdmin bool) error {
	if !isAdmin {
		return domainErrors.ErrUnauthorized
	}

	p, err := uc.payments.Get(ctx, paymentID)
	if err != nil {
		return err
	}

	if p.Status != payment.StatusFailed {
		return domainErrors.ErrNotRetryable
	}
	if p.AttemptCount >= uc.maxAttempts {
		return domainErrors.ErrMaxAttemptsReached
	}

	return uc.queue.Enqueue(ctx, paymentID)
}

// ListPaymentsUseCase answers read-only payment listings.
type ListPaymentsUseCase struct {
	payments Repository
}

// NewListPaymentsUseCase creates a new ListPaymentsUseCase.
func NewListPaymentsUseCase(payments Repository) *ListPaymentsUseCase {
	return &ListPaymentsUseCase{payments: payments}
}

// Execute returns the caller's own payments, or all payments for admins,
// newest first.
func (uc *ListPaymentsUseCase) Execute(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]*payment.Payment, error) {
	return uc.payments.List(ctx, userID, isAdmin)
}

// GetPaymentUseCase loads a single payment, enforcing ownership for
// non-admin callers.
type GetPaymentUseCase struct {
	payments Repository
}

// NewGetPaymentUseCase creates a new GetPaymentUseCase.
func NewGetPaymentUseCase(payments Repository) *GetPaymentUseCase {
	return &GetPaymentUseCase{payments: payments}
}

// Execute returns the payment if the caller may see it.
func (uc *GetPaymentUseCase) Execute(ctx context.Context, paymentID, userID uuid.UUID, isAdmin bool) (*payment.Payment, error) {
	p, err := uc.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.UserID != userID {
		return nil, domainErrors.ErrForbidden
	}
	return p, nil
}
