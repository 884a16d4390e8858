package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
	"github.com/lucashq/payflow/internal/domain/payment"
)

// CreatePaymentRequest holds the validated input for creating a payment.
type CreatePaymentRequest struct {
	ProviderID uuid.UUID
	AmountCents int64
	Currency   string
	Reference  string
}

// CreatePaymentUseCase validates a creation request against provider state,
// persists the initial Pending payment and hands the new id to the queue.
type CreatePaymentUseCase struct {
	payments       Repository
	catalog        Catalog
	txManager      TransactionManager
	queue          Queue
	maxAmountCents int64
}

// NewCreatePaymentUseCase creates a new CreatePaymentUseCase.
func NewCreatePaymentUseCase(
	payments Repository,
	catalog Catalog,
	txManager TransactionManager,
	queue Queue,
	maxAmountCents int64,
) *CreatePaymentUseCase {
	return &CreatePaymentUseCase{
		payments:       payments,
		catalog:        catalog,
		txManager:      txManager,
		queue:          queue,
		maxAmountCents: maxAmountCents,
	}
}

// Execute creates a Pending payment for userID and enqueues it. The enqueue
// happens after the transaction commits; a crash in between leaves a Pending
// row that the scanner's stale-pending sweep picks up later.
func (uc *CreatePaymentUseCase) Execute(ctx context.Context, req CreatePaymentRequest, userID uuid.UUID) (uuid.UUID, error) {
	if req.AmountCents <= 0 {
		return uuid.Nil, domainErrors.NewValidationError("amount", "must be greater than 0")
	}
	if req.AmountCents > uc.maxAmountCents {
		return uuid.Nil, domainErrors.NewValidationError("amount", "exceeds the configured ceiling")
	}

	var p *payment.Payment
	err := uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		prov, err := uc.catalog.Get(txCtx, req.ProviderID)
		if err != nil {
			if errors.Is(err, domainErrors.ErrProviderNotFound) {
				return domainErrors.ErrProviderNotFound
			}
			return fmt.Errorf("load provider: %w", err)
		}
		if !prov.IsActive {
			return domainErrors.ErrProviderInactive
		}

		p, err = payment.New(userID, prov.ID, req.AmountCents, req.Currency, req.Reference)
		if err != nil {
			return err
		}
		return uc.payments.Create(txCtx, p)
	})
	if err != nil {
		return uuid.Nil, err
	}

	if err := uc.queue.Enqueue(ctx, p.ID); err != nil {
		return uuid.Nil, fmt.Errorf("enqueue payment %s: %w", p.ID, err)
	}
	return p.ID, nil
}
